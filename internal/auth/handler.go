package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires the authentication endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: shared.NewValidator()}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "The request body must be valid JSON."))
		return
	}
	if err := shared.AsValidationError(h.validate.Struct(req)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("login failed", slog.String("email", req.Email))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"token": token, "user": user})
}
