package users

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
)

// Service applies the user policy to every operation before touching
// storage. Gates run in order: authorize, then validate, then execute.
type Service struct {
	repo         Repository
	policy       authz.UserPolicy
	validate     *validator.Validate
	onRoleChange func(context.Context)
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// NotifyRoleChange registers fn to run after a committed role change. Task
// listings are scoped by a denormalized owner role, so their cache has to
// drop entries carrying the old rank.
func (s *Service) NotifyRoleChange(fn func(context.Context)) {
	s.onRoleChange = fn
}

// Repo exposes the repository for collaborators that only need lookups.
func (s *Service) Repo() Repository {
	return s.repo
}

// Get returns the target user when the actor is allowed to view it.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id int64) (*User, error) {
	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.View(actor, target.Principal()) {
		return nil, shared.ErrUnauthorized
	}
	return target, nil
}

// Create stores a new account. The policy forbids creating superadmins and
// restricts admins to roles strictly below their own.
func (s *Service) Create(ctx context.Context, actor authz.Actor, req CreateUserRequest) (*User, error) {
	if !s.policy.Store(actor, req.Role) {
		return nil, shared.ErrUnauthorized
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}
	requestedRole, _ := authz.ParseRole(req.Role)
	status, _ := authz.ParseStatus(req.Status)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	return s.repo.Create(ctx, User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         requestedRole,
		Status:       status,
	})
}

// Update mutates the target account. Role reassignment is limited to roles
// strictly below the actor's own.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id int64, req UpdateUserRequest) (*User, error) {
	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newRoleName := ""
	if req.Role != nil {
		newRoleName = *req.Role
	}
	if !s.policy.Update(actor, target.Principal(), newRoleName) {
		return nil, shared.ErrUnauthorized
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}

	upd := UserUpdate{Name: req.Name, Email: req.Email}
	if newRoleName != "" {
		parsed, err := authz.ParseRole(newRoleName)
		if err != nil {
			return nil, shared.NewValidationError("role", "The role must be a valid role.")
		}
		upd.Role = &parsed
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		hashed := string(hash)
		upd.PasswordHash = &hashed
	}
	if req.Status != nil && *req.Status != "" {
		status, err := authz.ParseStatus(*req.Status)
		if err != nil {
			return nil, shared.NewValidationError("status", "The status must be a valid status.")
		}
		upd.Status = &status
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if upd.Role != nil && s.onRoleChange != nil {
		s.onRoleChange(ctx)
	}
	return updated, nil
}

// Delete removes the target account. Self-deletion is always refused by
// the policy, superadmin included.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.Delete(actor, target.Principal()) {
		return shared.ErrUnauthorized
	}
	return s.repo.Delete(ctx, id)
}

// List returns one page of users within the actor's effective scope. When
// no role filter is requested the scope defaults to the roles strictly
// below the actor's, so peers and superiors never show up.
func (s *Service) List(ctx context.Context, actor authz.Actor, req ListUsersRequest, path string) (*shared.Page[User], error) {
	if !s.policy.List(actor, authz.UserListParams{Role: req.Role}) {
		return nil, shared.ErrUnauthorized
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}

	// Role scope defaults to everything strictly below the actor, so an
	// unfiltered listing can never surface peers or superiors.
	roles := authz.LowerRoles(actor.Role)
	if req.Role != "" {
		requested, _ := authz.ParseRole(req.Role)
		roles = []authz.Role{requested}
	}

	filters := Filters{
		ID:           req.ID,
		NamePartial:  req.Name,
		EmailPartial: req.Email,
		Roles:        roles,
		Limit:        shared.PerPage,
		Offset:       shared.PageOffset(req.Page),
	}
	if req.Status != "" {
		status, err := authz.ParseStatus(req.Status)
		if err != nil {
			return nil, shared.NewValidationError("status", "The status must be a valid status.")
		}
		filters.Status = &status
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	result, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	envelope := shared.NewPage(result, page, total, path)
	return &envelope, nil
}
