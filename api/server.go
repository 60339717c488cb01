/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

SECURITY NOTE:
  Authentication lives in front of this service; the X-User-ID header is
  trusted as injected by the auth proxy. Visibility filtering is the only
  authorization applied here.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. allowedOrigins
// feeds the CORS middleware; empty means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/plan", h.GetPlan)
				r.Get("/periods", h.GetPeriods)
				r.Get("/series", h.GetSeries)
				r.Get("/monthly", h.GetMonthly)
				r.Get("/window", h.GetWindow)
				r.Get("/summary", h.GetSummary)
				r.Get("/activity", h.GetActivity)

				r.Route("/reports", func(r chi.Router) {
					r.Get("/", h.ListReports)
					r.Post("/", h.CreateReport)
					r.Put("/{reportID}", h.UpdateReport)
					r.Delete("/{reportID}", h.DeleteReport)
				})
			})
		})
	})

	return r
}
