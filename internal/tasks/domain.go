package tasks

import (
	"time"

	"github.com/taskhive/taskhive/internal/authz"
)

// Task is a unit of tracked work owned by exactly one user. UserRole is a
// denormalized snapshot of the owner's role, kept in sync with UserID on
// every write so listings can filter by role without joining users.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Completed   bool       `json:"completed"`
	UserID      int64      `json:"user_id"`
	UserRole    authz.Role `json:"user_role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Owner returns the owner-side view used by policy checks.
func (t Task) Owner() authz.Principal {
	return authz.Principal{ID: t.UserID, Role: t.UserRole}
}
