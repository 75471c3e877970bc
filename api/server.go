/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web client

ROUTE GROUPS:
  /api/transactions/*   Active set CRUD, export/import
  /api/cycle            Current cycle descriptor
  /api/summary          Dashboard aggregates
  /api/calendar         Per-day totals
  /api/archives/*       Closed cycle history (read-only)
  /api/settings/*       Closing day configuration
  /api/reconcile        Rollover trigger and status
  /api/ai/*             Enrichment features
  /api/diagnostics/*    Data quality scan

SECURITY NOTE:
  No authentication middleware. This is a single-user local application;
  all endpoints are public by design.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.AddTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
			r.Get("/export", h.ExportTransactions)
			r.Post("/import", h.ImportTransactions)
		})

		r.Get("/cycle", h.GetCurrentCycle)
		r.Get("/summary", h.GetSummary)
		r.Get("/calendar", h.GetCalendar)

		r.Route("/archives", func(r chi.Router) {
			r.Get("/", h.ListArchives)
			r.Get("/{cycleID}", h.GetArchive)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/closing-day", h.GetClosingDay)
			r.Put("/closing-day", h.SetClosingDay)
		})

		r.Route("/reconcile", func(r chi.Router) {
			r.Post("/", h.TriggerReconcile)
			r.Get("/status", h.ReconcileStatus)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/parse", h.ParseEntry)
			r.Post("/query", h.QueryAssistant)
			r.Get("/behavior", h.GetBehaviorAnalysis)
		})

		r.Post("/diagnostics/scan", h.RunDiagnostics)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
