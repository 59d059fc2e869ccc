package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires the user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.view)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	req := ListUsersRequest{
		Name:   q.Get("name"),
		Email:  q.Get("email"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
	if raw := q.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("id", "The id must be an integer."))
			return
		}
		req.ID = &id
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			httpx.RespondError(w, shared.NewValidationError("page", "The page must be at least 1."))
			return
		}
		req.Page = page
	}

	page, err := h.service.List(r.Context(), actor, req, r.URL.Path)
	if err != nil {
		h.respondErr(w, r, "list users", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"users": page})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "The request body must be valid JSON."))
		return
	}
	user, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respondErr(w, r, "create user", err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, r, "view user", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "The request body must be valid JSON."))
		return
	}
	user, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.respondErr(w, r, "update user", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.respondErr(w, r, "delete user", err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (authz.Actor, int64, bool) {
	actor, found := shared.ActorFromContext(r.Context())
	if !found {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return actor, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return actor, 0, false
	}
	return actor, id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
