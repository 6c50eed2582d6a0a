// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/middleware"
)

// NewRouter assembles the full route tree.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health endpoints get permissive rate limiting so monitors can poll.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, cfg.RateLimitWindow))
		r.Get("/health", h.Health)
		r.Get("/api/v1/health", h.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Get("/districts", h.Districts)
		r.Get("/districts/search", h.SearchDistricts)
		r.Get("/districts/state/{state}", h.DistrictsByState)
		r.Get("/districts/{code}", h.DistrictByCode)

		r.Get("/performance/district/{code}", h.DistrictPerformance)
		r.Get("/performance/state/{state}", h.StateSummary)

		r.Post("/compare", h.Compare)
		r.Post("/refresh-data", h.RefreshData)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
