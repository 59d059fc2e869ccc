package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

// Scope is the effective ownership restriction of a task listing, resolved
// by the service from the actor's role before any query is built.
//
// Exactly one shape applies: OwnerID pins the listing to one owner;
// OwnerRoles (optionally widened by IncludeOwn) pins it to owners whose
// role the actor dominates plus the actor's own tasks; all fields empty
// means unrestricted.
type Scope struct {
	OwnerID    *int64
	OwnerRoles []authz.Role
	IncludeOwn *int64
}

// Token renders the scope into a stable cache-key fragment.
func (s Scope) Token() string {
	switch {
	case s.OwnerID != nil:
		return fmt.Sprintf("owner=%d", *s.OwnerID)
	case len(s.OwnerRoles) > 0:
		names := make([]string, len(s.OwnerRoles))
		for i, role := range s.OwnerRoles {
			names[i] = role.String()
		}
		own := ""
		if s.IncludeOwn != nil {
			own = fmt.Sprintf("+own=%d", *s.IncludeOwn)
		}
		return "roles=" + strings.Join(names, ",") + own
	default:
		return "all"
	}
}

// Filters is the full predicate set for a task listing. Nil or zero fields
// are skipped when building the query.
type Filters struct {
	Scope              Scope
	TitlePartial       string
	DescriptionPartial string
	Completed          *bool
	DueDateFrom        *time.Time
	DueDateTo          *time.Time
	CreatedAtFrom      *time.Time
	CreatedAtTo        *time.Time
	UpdatedAtFrom      *time.Time
	UpdatedAtTo        *time.Time
	Limit              int
	Offset             int
}

// TaskUpdate lists the mutable columns. Nil fields are left untouched; a
// non-nil UserID reassigns ownership and refreshes the role snapshot in
// the same statement.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Completed   *bool
	UserID      *int64
}

// Repository provides PostgreSQL backed persistence for tasks.
type Repository interface {
	Get(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, f Filters) ([]Task, int, error)
	Create(ctx context.Context, t Task) (*Task, error)
	Update(ctx context.Context, id int64, upd TaskUpdate) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

type dbconn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db dbconn
}

// NewRepository constructs a Repository backed by the given connection.
func NewRepository(db dbconn) Repository {
	return &repository{db: db}
}

const taskColumns = "id, title, description, due_date, completed, user_id, user_role, created_at, updated_at"

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var role string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.UserID, &role, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var err error
	if t.UserRole, err = authz.ParseRole(role); err != nil {
		return nil, fmt.Errorf("tasks: scan user_role: %w", err)
	}
	return &t, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *repository) List(ctx context.Context, f Filters) ([]Task, int, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case f.Scope.OwnerID != nil:
		conditions = append(conditions, "user_id = "+arg(*f.Scope.OwnerID))
	case len(f.Scope.OwnerRoles) > 0:
		names := make([]string, len(f.Scope.OwnerRoles))
		for i, role := range f.Scope.OwnerRoles {
			names[i] = role.String()
		}
		roleCond := "user_role = ANY(" + arg(names) + ")"
		if f.Scope.IncludeOwn != nil {
			roleCond = "(" + roleCond + " OR user_id = " + arg(*f.Scope.IncludeOwn) + ")"
		}
		conditions = append(conditions, roleCond)
	}

	if f.TitlePartial != "" {
		conditions = append(conditions, "title ILIKE "+arg("%"+f.TitlePartial+"%"))
	}
	if f.DescriptionPartial != "" {
		conditions = append(conditions, "description ILIKE "+arg("%"+f.DescriptionPartial+"%"))
	}
	if f.Completed != nil {
		conditions = append(conditions, "completed = "+arg(*f.Completed))
	}
	for _, bound := range []struct {
		column string
		op     string
		value  *time.Time
	}{
		{"due_date", ">=", f.DueDateFrom},
		{"due_date", "<=", f.DueDateTo},
		{"created_at", ">=", f.CreatedAtFrom},
		{"created_at", "<=", f.CreatedAtTo},
		{"updated_at", ">=", f.UpdatedAtFrom},
		{"updated_at", "<=", f.UpdatedAtTo},
	} {
		if bound.value != nil {
			conditions = append(conditions, fmt.Sprintf("%s %s %s", bound.column, bound.op, arg(*bound.value)))
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("tasks: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks %s ORDER BY due_date ASC, created_at ASC, updated_at ASC LIMIT %s OFFSET %s`,
		taskColumns, whereClause, arg(f.Limit), arg(f.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("tasks: list: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Create inserts the task, deriving the owner role snapshot from the owner
// row inside the same statement so the two can never diverge.
func (r *repository) Create(ctx context.Context, t Task) (*Task, error) {
	query := fmt.Sprintf(`
		INSERT INTO tasks (title, description, due_date, completed, user_id, user_role)
		VALUES ($1, $2, $3, $4, $5, (SELECT role FROM users WHERE id = $5))
		RETURNING %s`, taskColumns)
	return scanTask(r.db.QueryRow(ctx, query, t.Title, t.Description, t.DueDate, t.Completed, t.UserID))
}

func (r *repository) Update(ctx context.Context, id int64, upd TaskUpdate) (*Task, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.DueDate != nil {
		set("due_date", *upd.DueDate)
	}
	if upd.Completed != nil {
		set("completed", *upd.Completed)
	}
	if upd.UserID != nil {
		// Reassignment refreshes the denormalized role snapshot in the
		// same statement; the two columns cannot go stale independently.
		args = append(args, *upd.UserID)
		position := len(args)
		sets = append(sets, fmt.Sprintf("user_id = $%d", position))
		sets = append(sets, fmt.Sprintf("user_role = (SELECT role FROM users WHERE id = $%d)", position))
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), taskColumns)
	return scanTask(r.db.QueryRow(ctx, query, args...))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
