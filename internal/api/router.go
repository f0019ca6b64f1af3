// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Package api provides the HTTP surface: Chi routing, the request handlers
// for the four-step recommendation flow, and the standard response envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/filmseer/filmseer/internal/middleware"
)

// NewRouter wires the middleware stack and routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)    // X-Request-ID header plus logging context
	r.Use(chimiddleware.RealIP)    // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer) // Recover from panics
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.cfg.Server.RateLimitReqs, h.cfg.Server.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", h.Health)
		r.Get("/users/{userID}", h.User)
		r.Get("/genres", h.Genres)
		r.Get("/genres/{genre}/movies", h.GenreMovies)
		r.Post("/recommendations", h.Recommend)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
