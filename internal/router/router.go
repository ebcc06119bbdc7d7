// Package router sets up all HTTP routes and middleware chains for the
// WeCamp category API. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wecamp/internal/handlers"
	"wecamp/internal/middleware"
)

// Deps bundles what the router needs to build its handler tree.
type Deps struct {
	Public *handlers.Public
	Admin  *handlers.Admin
	Events http.Handler

	// AdminTokenHash is the bcrypt hash of the admin bearer token. Empty
	// leaves the admin API open.
	AdminTokenHash string

	// Limiter throttles the API per client IP. Nil disables rate limiting.
	Limiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, never rate limited.
	r.Get("/health", healthHandler)

	// The event stream is long-lived and outside the limiter.
	r.Method(http.MethodGet, "/api/events", d.Events)

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		// Public read API.
		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", d.Public.List)
			r.Get("/roots", d.Public.Roots)
			r.Get("/forest", d.Public.Forest)
			r.Get("/{id}", d.Public.Get)
			r.Get("/{id}/children", d.Public.Children)
			r.Get("/{id}/tree", d.Public.Tree)
		})
		r.Get("/api/navbar", d.Public.Navbar)
		r.Get("/api/filters/gear", d.Public.GearFilter)
		r.Get("/category/{slug}", d.Public.LeafPage)

		// Category editor, behind the admin token.
		r.Route("/api/admin/categories", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireAdmin(d.AdminTokenHash))

			r.Get("/tree", d.Admin.Tree)
			r.Get("/search", d.Admin.Search)
			r.Get("/changes", d.Admin.Changes)
			r.Post("/", d.Admin.Create)
			r.Post("/swap", d.Admin.Swap)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", d.Admin.Update)
				r.Delete("/", d.Admin.Delete)
				r.Post("/move-up", d.Admin.MoveUp)
				r.Post("/move-down", d.Admin.MoveDown)
				r.Get("/wizard", d.Admin.Wizard)
				r.Post("/columns", d.Admin.CreateColumn)
				r.Post("/columns/{columnID}/leaves", d.Admin.CreateLeaf)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
