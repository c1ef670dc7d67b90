// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package metrics exposes Prometheus instrumentation for the recompute
// engine, the event worker, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recompute engine metrics
	RecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_recompute_duration_seconds",
			Help:    "Duration of recompute passes in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 2.5, 10, 60, 300, 1800},
		},
		[]string{"mode"}, // "incremental", "rebuild"
	)

	RecomputeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_recompute_failures_total",
			Help: "Total per-candidate and per-owner recompute failures",
		},
		[]string{"mode"},
	)

	// Event pipeline metrics
	TagsChangedPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_tags_changed_published_total",
			Help: "Total TagsChanged events published",
		},
	)

	TagsChangedDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_tags_changed_dropped_total",
			Help: "Total TagsChanged events dropped by the circuit breaker",
		},
	)

	WorkerRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_worker_recomputes_total",
			Help: "Total recompute passes run by the event worker",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	// Listing metrics
	PagesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_pages_served_total",
			Help: "Total listing pages served",
		},
		[]string{"resource"}, // "matches", "bookmark", "friend", "blocked", "hidden"
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one handled API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
