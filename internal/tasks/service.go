package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/cache"
	"github.com/taskhive/taskhive/internal/shared"
)

const (
	// ListCacheTag groups every cached task listing; any task mutation
	// flushes the whole tag.
	ListCacheTag = "tasks:list"
	// ListCacheTTL bounds how long a flushed-but-stale entry can survive a
	// failed invalidation.
	ListCacheTTL = 10 * time.Second
)

// Service applies the task policy to every operation, resolves the
// effective listing scope, and memoizes list reads behind the tag cache.
type Service struct {
	repo     Repository
	resolve  authz.PrincipalResolver
	policy   authz.TaskPolicy
	validate *validator.Validate
	cache    *cache.TagCache
	logger   *slog.Logger
}

// NewService constructs a Service. resolve looks up task owners for the
// policy; listCache may be nil to disable memoization.
func NewService(repo Repository, resolve authz.PrincipalResolver, listCache *cache.TagCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		resolve:  resolve,
		validate: shared.NewValidator(),
		cache:    listCache,
		logger:   logger,
	}
}

// Get returns the task when the actor is allowed to view it.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id int64) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.View(actor, task.Owner()) {
		return nil, shared.ErrUnauthorized
	}
	return task, nil
}

// Create stores a new task for the requested owner and flushes the list
// cache.
func (s *Service) Create(ctx context.Context, actor authz.Actor, req CreateTaskRequest) (*Task, error) {
	allowed, err := s.policy.Store(ctx, actor, req.UserID, s.resolve)
	if err != nil {
		return nil, fmt.Errorf("tasks: authorize store: %w", err)
	}
	if !allowed {
		return nil, shared.ErrUnauthorized
	}
	// Only a superadmin gets this far without naming an owner; the task
	// lands on them.
	if req.UserID == 0 {
		req.UserID = actor.ID
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}
	dueDate, err := time.Parse(DateTimeLayout, req.DueDate)
	if err != nil {
		return nil, shared.NewValidationError("due_date", "The due_date does not match the expected format.")
	}

	task, err := s.repo.Create(ctx, Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Completed:   req.Completed,
		UserID:      req.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.FlushListCache(ctx)
	return task, nil
}

// Update mutates the task and flushes the list cache. Ownership
// reassignment is applied only for admin-ranked actors; the policy has
// already refused reassignment attempts by plain owners.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id int64, req UpdateTaskRequest) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Update(actor, task.Owner(), req.UserID) {
		return nil, shared.ErrUnauthorized
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}

	upd := TaskUpdate{Title: req.Title, Description: req.Description, Completed: req.Completed}
	if req.DueDate != nil {
		dueDate, err := time.Parse(DateTimeLayout, *req.DueDate)
		if err != nil {
			return nil, shared.NewValidationError("due_date", "The due_date does not match the expected format.")
		}
		upd.DueDate = &dueDate
	}
	if req.UserID != nil && *req.UserID != 0 && *req.UserID != task.UserID && actor.Role >= authz.RoleAdmin {
		owner, err := s.resolve(ctx, *req.UserID)
		if err != nil {
			return nil, fmt.Errorf("tasks: resolve new owner: %w", err)
		}
		if owner == nil {
			return nil, shared.NewValidationError("user_id", "The user_id must identify an existing user.")
		}
		upd.UserID = req.UserID
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.FlushListCache(ctx)
	return updated, nil
}

// Delete removes the task and flushes the list cache.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.Delete(actor, task.Owner()) {
		return shared.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.FlushListCache(ctx)
	return nil
}

// List returns one page of tasks within the actor's effective ownership
// scope, serving from the tag cache when an identical read is fresh.
func (s *Service) List(ctx context.Context, actor authz.Actor, req ListTasksRequest, path string) (*shared.Page[Task], error) {
	allowed, err := s.policy.List(ctx, actor, req.UserID, s.resolve)
	if err != nil {
		return nil, fmt.Errorf("tasks: authorize list: %w", err)
	}
	if !allowed {
		return nil, shared.ErrUnauthorized
	}
	if err := shared.AsValidationError(s.validate.Struct(req)); err != nil {
		return nil, err
	}

	filters, err := s.buildFilters(actor, req)
	if err != nil {
		return nil, err
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	compute := func(ctx context.Context) (any, error) {
		result, total, err := s.repo.List(ctx, *filters)
		if err != nil {
			return nil, err
		}
		return shared.NewPage(result, page, total, path), nil
	}

	var envelope shared.Page[Task]
	if s.cache == nil {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		envelope = value.(shared.Page[Task])
		return &envelope, nil
	}

	key := listCacheKey(filters.Scope, req, page, path)
	if _, err := s.cache.GetOrCompute(ctx, ListCacheTag, key, &envelope, compute); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// buildFilters resolves the default scope and composes the optional
// predicates. Plain users are always pinned to their own tasks no matter
// what owner filter they supplied; admins without an owner filter see the
// tasks of roles they dominate plus their own.
func (s *Service) buildFilters(actor authz.Actor, req ListTasksRequest) (*Filters, error) {
	var scope Scope
	switch {
	case actor.Role == authz.RoleUser:
		ownID := actor.ID
		scope.OwnerID = &ownID
	case req.UserID != nil && *req.UserID != 0:
		scope.OwnerID = req.UserID
	case actor.Role == authz.RoleAdmin:
		ownID := actor.ID
		scope.OwnerRoles = authz.LowerRoles(actor.Role)
		scope.IncludeOwn = &ownID
	}

	filters := &Filters{
		Scope:              scope,
		TitlePartial:       req.Title,
		DescriptionPartial: req.Description,
		Completed:          req.Completed,
		Limit:              shared.PerPage,
		Offset:             shared.PageOffset(req.Page),
	}

	for _, bound := range []struct {
		field string
		raw   string
		dest  **time.Time
	}{
		{"due_date_from", req.DueDateFrom, &filters.DueDateFrom},
		{"due_date_to", req.DueDateTo, &filters.DueDateTo},
		{"created_at_from", req.CreatedAtFrom, &filters.CreatedAtFrom},
		{"created_at_to", req.CreatedAtTo, &filters.CreatedAtTo},
		{"updated_at_from", req.UpdatedAtFrom, &filters.UpdatedAtFrom},
		{"updated_at_to", req.UpdatedAtTo, &filters.UpdatedAtTo},
	} {
		if bound.raw == "" {
			continue
		}
		parsed, err := time.Parse(DateTimeLayout, bound.raw)
		if err != nil {
			return nil, shared.NewValidationError(bound.field, fmt.Sprintf("The %s does not match the expected format.", bound.field))
		}
		*bound.dest = &parsed
	}
	return filters, nil
}

// listCacheKey derives the cache key from the effective scope and the
// normalized request parameters so equal reads share an entry.
func listCacheKey(scope Scope, req ListTasksRequest, page int, path string) string {
	completed := ""
	if req.Completed != nil {
		completed = fmt.Sprintf("%t", *req.Completed)
	}
	parts := []string{
		scope.Token(),
		"title=" + strings.ToLower(req.Title),
		"description=" + strings.ToLower(req.Description),
		"completed=" + completed,
		"due=" + req.DueDateFrom + ".." + req.DueDateTo,
		"created=" + req.CreatedAtFrom + ".." + req.CreatedAtTo,
		"updated=" + req.UpdatedAtFrom + ".." + req.UpdatedAtTo,
		fmt.Sprintf("page=%d", page),
		"path=" + path,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return ListCacheTag + ":" + hex.EncodeToString(sum[:])
}

// DefaultListPath is the mount point of the task listing endpoint, used
// when warming cache entries outside a request.
const DefaultListPath = "/api/tasks"

// WarmListCache precomputes the first pages of the unrestricted listing so
// the next reads after a wholesale flush hit the cache. Pages are warmed
// concurrently.
func (s *Service) WarmListCache(ctx context.Context, pages int) error {
	if s.cache == nil || pages <= 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for page := 1; page <= pages; page++ {
		g.Go(func() error {
			req := ListTasksRequest{Page: page}
			filters := &Filters{
				Limit:  shared.PerPage,
				Offset: shared.PageOffset(page),
			}
			var envelope shared.Page[Task]
			key := listCacheKey(filters.Scope, req, page, DefaultListPath)
			_, err := s.cache.GetOrCompute(ctx, ListCacheTag, key, &envelope, func(ctx context.Context) (any, error) {
				result, total, err := s.repo.List(ctx, *filters)
				if err != nil {
					return nil, err
				}
				return shared.NewPage(result, page, total, DefaultListPath), nil
			})
			return err
		})
	}
	return g.Wait()
}

// FlushListCache invalidates every cached listing. A failed flush after a
// successful persist is tolerated: stale reads can be served until the TTL
// expires, so this only logs. Exported because the listings are also scoped
// by the denormalized owner role, so a user role change must flush them too.
func (s *Service) FlushListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Flush(ctx, ListCacheTag); err != nil {
		s.logger.Warn("task list cache flush failed", slog.Any("error", err))
	}
}
