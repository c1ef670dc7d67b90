// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/affinity/internal/models"
)

// RouterConfig carries the middleware knobs the router needs.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// NewRouter assembles the chi router: middleware chain, health, metrics,
// and the versioned API surface.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))
	if cfg.RateLimitRequests > 0 {
		r.Use(httprate.Limit(
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
	}

	r.Get("/api/v1/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/users/{id}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/tags", handler.ReplaceTags)
		r.Get("/matches", handler.Matches)

		relationshipRoutes(r, "/bookmarks", handler, models.RelationBookmark)
		relationshipRoutes(r, "/friends", handler, models.RelationFriend)
		relationshipRoutes(r, "/blocked", handler, models.RelationBlocked)
		relationshipRoutes(r, "/hidden", handler, models.RelationHidden)
	})

	return r
}

// relationshipRoutes mounts the identical listing/upsert/delete trio for
// one relationship collection.
func relationshipRoutes(r chi.Router, path string, handler *Handler, kind models.RelationKind) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", handler.ListRelationships(kind))
		r.Put("/{target}", handler.UpsertRelationship(kind))
		r.Delete("/{target}", handler.DeleteRelationship(kind))
	})
}
