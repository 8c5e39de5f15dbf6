/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboards

SECURITY NOTE:
  No authentication middleware. The trust model is "whoever can post in
  the channel"; the chat transport enforces channel membership.
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

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		// Message intake (the chat transport's entry point)
		r.Post("/messages", h.HandleMessage)
		r.Post("/pending/resolve", h.ResolvePending)

		// Buckets
		r.Route("/buckets", func(r chi.Router) {
			r.Get("/", h.ListBuckets)
			r.Put("/{key}", h.SetBucket)
			r.Post("/{key}/adjust", h.AdjustAllocation)
		})

		// Income
		r.Post("/income", h.RecordIncome)
		r.Get("/income", h.IncomeHistory)

		// Reports
		r.Get("/transactions", h.TransactionHistory)
		r.Get("/summary", h.GetSummary)

		// Corrections
		r.Post("/undo", h.Undo)
		r.Post("/clear", h.Clear)
	})

	return r
}
