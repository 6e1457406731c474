// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes assembles the HTTP handler tree.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(h.cfg.Server.CORSOrigins))

	// Unauthenticated operational endpoints.
	r.Get("/api/v1/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	adminRole := h.cfg.Security.AdminRole

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(h.cfg.Server.RateLimitReqs, h.cfg.Server.RateLimitWindow))
		r.Use(PrometheusMetrics)
		r.Use(Authenticate(h.jwtManager))

		r.Get("/ws", h.WebSocket)
		r.Get("/connections", h.Connections)

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", h.SubmitFeedback)
			r.Get("/statistics", h.FeedbackStatistics)
			r.Get("/distribution", h.FeedbackDistribution)
		})

		r.Route("/retraining", func(r chi.Router) {
			r.Get("/status", h.RetrainingStatus)
			r.Get("/jobs", h.ListRetrainingJobs)
			r.Get("/jobs/{jobID}", h.GetRetrainingJob)

			r.With(RequireRole(adminRole)).Post("/trigger", h.TriggerRetraining)
			r.With(RequireRole(adminRole)).Patch("/jobs/{jobID}", h.UpdateRetrainingJob)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireRole(adminRole))
			r.Post("/sessions/revoke", h.RevokeSessions)
			r.Post("/notify", h.NotifyUser)
		})
	})

	return r
}
