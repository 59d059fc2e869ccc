package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/shared"
)

// Filters is the effective query scope for a user listing, produced by the
// service after authorization and default-scope resolution. Zero-valued
// fields are skipped entirely when building the query.
type Filters struct {
	ID           *int64
	NamePartial  string
	EmailPartial string
	Roles        []authz.Role
	Status       *authz.Status
	Limit        int
	Offset       int
}

// UserUpdate lists the mutable columns. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *authz.Role
	Status       *authz.Status
}

// Repository provides PostgreSQL backed persistence for users.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Principal(ctx context.Context, id int64) (*authz.Principal, error)
	List(ctx context.Context, f Filters) ([]User, int, error)
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type dbconn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type repository struct {
	db dbconn
}

// NewRepository constructs a Repository backed by the given connection.
func NewRepository(db dbconn) Repository {
	return &repository{db: db}
}

const userColumns = "id, name, email, password_hash, role, status, created_at, updated_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role, status string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var err error
	if u.Role, err = authz.ParseRole(role); err != nil {
		return nil, fmt.Errorf("users: scan role: %w", err)
	}
	if u.Status, err = authz.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("users: scan status: %w", err)
	}
	return &u, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// Principal fetches just the identity needed for hierarchy checks.
func (r *repository) Principal(ctx context.Context, id int64) (*authz.Principal, error) {
	var p authz.Principal
	var role string
	err := r.db.QueryRow(ctx, "SELECT id, role FROM users WHERE id = $1", id).Scan(&p.ID, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if p.Role, err = authz.ParseRole(role); err != nil {
		return nil, fmt.Errorf("users: scan role: %w", err)
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, f Filters) ([]User, int, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ID != nil {
		conditions = append(conditions, "id = "+arg(*f.ID))
	}
	if f.NamePartial != "" {
		conditions = append(conditions, "name ILIKE "+arg("%"+f.NamePartial+"%"))
	}
	if f.EmailPartial != "" {
		conditions = append(conditions, "email ILIKE "+arg("%"+f.EmailPartial+"%"))
	}
	if len(f.Roles) > 0 {
		names := make([]string, len(f.Roles))
		for i, role := range f.Roles {
			names[i] = role.String()
		}
		conditions = append(conditions, "role = ANY("+arg(names)+")")
	}
	if f.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*f.Status)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY id LIMIT %s OFFSET %s",
		userColumns, whereClause, arg(f.Limit), arg(f.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repository) Create(ctx context.Context, u User) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (name, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role.String(), string(u.Status)))
}

func (r *repository) Update(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	if upd.Role != nil {
		set("role", upd.Role.String())
	}
	if upd.Status != nil {
		set("status", string(*upd.Status))
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns)

	if upd.Role == nil {
		return scanUser(r.db.QueryRow(ctx, query, args...))
	}

	// A role change must reach the task snapshots in the same transaction
	// or listings scoped by user_role would see the old rank.
	var user *User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if user, err = scanUser(tx.QueryRow(ctx, query, args...)); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "UPDATE tasks SET user_role = $1 WHERE user_id = $2", upd.Role.String(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
