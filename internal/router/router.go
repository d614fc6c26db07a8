// Package router sets up all HTTP routes and middleware chains for the
// postcms API. Reads are public; writes and account routes require an
// authenticated principal.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"postcms/internal/envelope"
	"postcms/internal/handlers"
	"postcms/internal/middleware"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Health     *handlers.Health
}

// New creates and returns the configured Chi router. loginLimiter may be
// nil to disable login throttling.
func New(verifier middleware.Verifier, loginLimiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(verifier))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		envelope.Fail(w, http.StatusNotFound, "Resource not found.", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		envelope.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
	})

	r.Get("/health", h.Health.Check)

	// Session routes.
	r.Group(func(r chi.Router) {
		if loginLimiter != nil {
			r.Use(loginLimiter.Middleware)
		}
		r.Post("/login", h.Auth.Login)
	})
	r.Post("/logout", h.Auth.Logout)
	r.Post("/verify-token", h.Auth.VerifyToken)

	// Account routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/user", h.Auth.User)
		r.Post("/2fa/setup", h.Auth.TwoFASetup)
		r.Post("/2fa/enable", h.Auth.TwoFAEnable)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.Posts.List)
		r.Get("/{id}", h.Posts.Show)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", h.Posts.Create)
			r.Put("/{id}", h.Posts.Update)
			r.Patch("/{id}", h.Posts.Update)
			r.Delete("/{id}", h.Posts.Delete)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Categories.List)
		r.Get("/{id}", h.Categories.Show)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", h.Categories.Create)
			r.Put("/{id}", h.Categories.Update)
			r.Patch("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})
	})

	return r
}
