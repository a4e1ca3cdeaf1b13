/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. RateLimit:  Per-IP token bucket
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/guard-types/*          Guard type catalog
  /api/employees/*            Employee directory
  /api/assignments/*          The occupancy ledger
  /api/coverage, /api/planning Coverage queries
  /api/availability/*         Advisory availability slots
  /api/leave-requests/*       Leave workflow
  /api/replacement-requests/* Replacement workflow
  /api/notifications/*        Pull-based notifications

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/firehall/shift-engine/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/guard-types", func(r chi.Router) {
			r.Get("/", h.ListGuardTypes)
			r.Post("/", h.SaveGuardType)
			r.Get("/{id}", h.GetGuardType)
			r.Post("/{id}/deactivate", h.DeactivateGuardType)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/assignments", h.GetEmployeeAssignments)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
			r.Post("/clear", h.ClearAssignments)
			r.Post("/auto", h.AutoAssign)
		})

		r.Get("/coverage", h.GetCoverage)
		r.Get("/planning", h.GetPlanning)
		r.Get("/stats/workload", h.GetWorkload)

		r.Route("/availability", func(r chi.Router) {
			r.Get("/", h.ListAvailability)
			r.Post("/", h.DeclareAvailability)
			r.Delete("/{id}", h.RemoveAvailability)
		})

		r.Route("/leave-requests", func(r chi.Router) {
			r.Get("/", h.ListLeaveRequests)
			r.Post("/", h.SubmitLeaveRequest)
			r.Post("/{id}/decide", h.DecideLeaveRequest)
		})

		r.Route("/replacement-requests", func(r chi.Router) {
			r.Get("/", h.ListReplacementRequests)
			r.Post("/", h.SubmitReplacementRequest)
			r.Post("/{id}/resolve", h.ResolveReplacementRequest)
			r.Post("/{id}/decide", h.DecideReplacementRequest)
			r.Post("/{id}/search", h.SearchReplacementCandidates)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Get("/unread-count", h.GetUnreadCount)
			r.Post("/{id}/read", h.MarkNotificationRead)
			r.Post("/read-all", h.MarkAllNotificationsRead)
		})
	})

	return r
}
