package users

import (
	"time"

	"github.com/taskhive/taskhive/internal/authz"
)

// User represents a managed account. A User may itself be the actor of a
// request.
type User struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         authz.Role   `json:"role"`
	Status       authz.Status `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Principal returns the owner-side view used by policy checks.
func (u User) Principal() authz.Principal {
	return authz.Principal{ID: u.ID, Role: u.Role}
}
