/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the planning frontend

ROUTE GROUPS:
  /api/activities/*   Activity management, allocations, executions
  /api/plan/*         Recomputation, load map, overdue, audit trail
  /api/calendar/*     Working-day lookups

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Activity routes
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", h.ListActivities)
			r.Post("/", h.CreateActivity)
			r.Get("/{id}", h.GetActivity)
			r.Delete("/{id}", h.DeleteActivity)
			r.Get("/{id}/allocation", h.GetAllocation)
			r.Get("/{id}/progress", h.GetProgress)
			r.Get("/{id}/executions", h.ListExecutions)
			r.Post("/{id}/executions", h.CreateExecution)
		})

		// Plan routes
		r.Route("/plan", func(r chi.Router) {
			r.Post("/recompute", h.RecomputePlan)
			r.Get("/load", h.GetLoad)
			r.Get("/overdue", h.ListOverdue)
			r.Get("/runs", h.ListPlanRuns)
		})

		// Calendar routes
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/next-working-day", h.NextWorkingDay)
		})
	})

	return r
}
