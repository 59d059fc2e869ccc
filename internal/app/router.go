package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthService  *auth.Service
	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	TasksHandler *tasks.Handler
}

// NewRouter constructs the chi.Router with Taskhive defaults. Everything
// under /api requires a resolved actor; /auth/login and /healthz stay open.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(params.AuthService, params.Logger))
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/tasks", params.TasksHandler.MountRoutes)
	})

	return r
}
