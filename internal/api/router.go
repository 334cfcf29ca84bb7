// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cineaste/internal/middleware"
	"github.com/tomtom215/cineaste/internal/web"
)

// Router assembles the HTTP routes.
type Router struct {
	handler *Handler
	chimw   *ChiMiddleware
}

// NewRouter creates a Router from the handler and middleware factories.
func NewRouter(handler *Handler, chimw *ChiMiddleware) *Router {
	return &Router{handler: handler, chimw: chimw}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS())

	// Health endpoints get their own permissive rate limit so probes
	// never compete with data requests.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chimw.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(middleware.Prometheus)

		r.Get("/directors", router.handler.Directors)
		r.Get("/directors/{id}/movies", router.handler.DirectorMovies)
		r.Get("/distribution", router.handler.Distribution)
		r.Get("/stats", router.handler.Stats)
		r.Get("/export", router.handler.ExportCSV)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Embedded single-page UI.
	r.Get("/", web.Index)

	return r
}
