/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend / agent clients

ROUTE GROUPS:
  /me/pto/*       Employee self-service (identity via override_employee_id
                  query param or X-Employee-ID header)
  /holidays       Public holiday calendar
  /api/*          Admin: employees, requests, ledger, seed data

SECURITY NOTE:
  No authentication middleware. Identity is caller-asserted, which is
  only acceptable for an internal demo deployment.

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
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Employee-ID"},
		AllowCredentials: true,
	}))

	// Employee self-service routes
	r.Route("/me/pto", func(r chi.Router) {
		r.Get("/balance", h.GetMyBalance)
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.SubmitMyRequest)
			r.Get("/", h.ListMyRequests)
			r.Get("/{id}", h.GetMyRequest)
			r.Patch("/{id}/cancel", h.CancelMyRequest)
		})
	})

	// Public holiday calendar
	r.Get("/holidays", h.ListHolidays)

	// Admin routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/deactivate", h.DeactivateEmployee)
			r.Get("/{id}/balance", h.GetEmployeeBalance)
			r.Get("/{id}/ledger", h.GetEmployeeLedger)
			r.Post("/{id}/accrual", h.ApplyAccrual)
			r.Post("/{id}/reset", h.ResetEmployeeBalance)
			r.Post("/{id}/correction", h.ApplyCorrection)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListRequests)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})

		r.Post("/holidays", h.CreateHoliday)
		r.Post("/seed", h.SeedDemoData)
	})

	return r
}
