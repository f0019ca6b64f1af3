// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for production observability:
// - Catalog load and DuckDB query performance
// - API endpoint latency and throughput
// - Recommendation pipeline outcomes
// - TMDB poster resolution and circuit breaker state

var (
	// Catalog Metrics
	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Duration of catalog table loads at startup",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"table"},
	)

	CatalogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_rows",
			Help: "Number of rows loaded per catalog table",
		},
		[]string{"table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Sampling Metrics
	SamplesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samples_served_total",
			Help: "Total number of genre sample responses",
		},
		[]string{"strategy", "genre"},
	)

	// Recommendation Pipeline Metrics
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by result",
		},
		[]string{"result"}, // "ok", "no_candidates", "nothing_to_recommend", "error"
	)

	PredictionsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_scored_total",
			Help: "Total number of candidate movies scored",
		},
	)

	PredictionsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_skipped_total",
			Help: "Total number of candidates skipped during scoring",
		},
		[]string{"reason"}, // "prediction_failed", "missing_title"
	)

	RatingsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_dropped_total",
			Help: "Total number of submitted ratings dropped as out of range",
		},
	)

	// Poster Resolver Metrics
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_lookups_total",
			Help: "Total number of TMDB poster lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "miss", "error", "rejected", "disabled"
	)

	PosterLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poster_lookup_duration_seconds",
			Help:    "Duration of TMDB poster lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PosterCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_cache_requests_total",
			Help: "Total number of poster cache reads by outcome",
		},
		[]string{"outcome"}, // "hit", "miss"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordCatalogLoad records a catalog table load at startup.
func RecordCatalogLoad(table string, rows int, duration time.Duration, err error) {
	CatalogLoadDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(table).Inc()
		return
	}
	CatalogRows.WithLabelValues(table).Set(float64(rows))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSample records a served genre sample.
func RecordSample(strategy, genre string) {
	SamplesServed.WithLabelValues(strategy, genre).Inc()
}

// RecordPipelineRun records a completed pipeline run.
func RecordPipelineRun(result string, duration time.Duration) {
	PipelineRuns.WithLabelValues(result).Inc()
	PipelineDuration.Observe(duration.Seconds())
}

// RecordPosterCache records a poster cache read.
func RecordPosterCache(hit bool) {
	if hit {
		PosterCacheRequests.WithLabelValues("hit").Inc()
		return
	}
	PosterCacheRequests.WithLabelValues("miss").Inc()
}

// RecordPosterLookup records a poster lookup outcome.
func RecordPosterLookup(outcome string, duration time.Duration) {
	PosterLookups.WithLabelValues(outcome).Inc()
	PosterLookupDuration.Observe(duration.Seconds())
}
