package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
)

// RouterConfig holds the handlers and middleware mounted by NewRouter.
type RouterConfig struct {
	Users  *UserHandler
	Tasks  *TaskHandler
	Auth   *middleware.AuthMiddleware
	Logger *slog.Logger
}

// NewRouter builds the HTTP routes of the API.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(log))

	// Public endpoints
	r.Post("/users", cfg.Users.Signup)
	r.Post("/users/login", cfg.Users.Login)
	r.Get("/users/{id}/avatar", cfg.Users.GetAvatar)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth.Authenticate)

		r.Post("/users/logout", cfg.Users.Logout)
		r.Post("/users/logoutAll", cfg.Users.LogoutAll)
		r.Get("/users/me", cfg.Users.Me)
		r.Patch("/users/me", cfg.Users.UpdateMe)
		r.Delete("/users/me", cfg.Users.DeleteMe)
		r.Post("/users/me/avatar", cfg.Users.UploadAvatar)
		r.Delete("/users/me/avatar", cfg.Users.DeleteAvatar)

		r.Post("/tasks", cfg.Tasks.Create)
		r.Get("/tasks", cfg.Tasks.List)
		r.Get("/tasks/{id}", cfg.Tasks.Get)
		r.Patch("/tasks/{id}", cfg.Tasks.Update)
		r.Delete("/tasks/{id}", cfg.Tasks.Delete)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
