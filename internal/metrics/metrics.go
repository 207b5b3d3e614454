// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package metrics defines the Prometheus instrumentation for ReelMatch.
//
// All collectors register with the default registry through promauto and
// are exposed by the /metrics route.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Build Pipeline Metrics
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of build pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage", "source"}, // source: "cache" or "build"
	)

	PipelineBuildErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_build_errors_total",
			Help: "Total number of fatal build pipeline errors",
		},
		[]string{"stage", "error_type"},
	)

	ArtifactCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_cache_hits_total",
			Help: "Total number of artifacts reused from the artifact store",
		},
		[]string{"artifact", "backend"},
	)

	ArtifactCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_cache_misses_total",
			Help: "Total number of artifacts rebuilt because the store had none",
		},
		[]string{"artifact", "backend"},
	)

	RowsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_rows_discarded_total",
			Help: "Rows dropped while building the feature table",
		},
		[]string{"reason"},
	)

	// Corpus Gauges
	CorpusRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_rows",
			Help: "Number of movies in the feature table",
		},
	)

	CorpusVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_vocabulary_size",
			Help: "Number of terms in the fitted vocabulary",
		},
	)

	ServiceReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_service_ready",
			Help: "1 when the recommendation service initialized successfully",
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total number of service queries by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "hit", "empty", "error"
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Service query duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	// Result Cache Metrics
	ResultCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total number of query result cache hits",
		},
		[]string{"operation"},
	)

	ResultCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total number of query result cache misses",
		},
		[]string{"operation"},
	)

	// Catalog Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB catalog queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB catalog query errors",
		},
		[]string{"operation"},
	)
)

// Query outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStage records a pipeline stage duration. fromCache selects the
// source label.
func RecordStage(stage string, fromCache bool, duration time.Duration) {
	source := "build"
	if fromCache {
		source = "cache"
	}
	PipelineStageDuration.WithLabelValues(stage, source).Observe(duration.Seconds())
}

// RecordArtifactLookup counts an artifact store hit or miss.
func RecordArtifactLookup(artifact, backend string, hit bool) {
	if hit {
		ArtifactCacheHits.WithLabelValues(artifact, backend).Inc()
		return
	}
	ArtifactCacheMisses.WithLabelValues(artifact, backend).Inc()
}

// RecordBuildError counts a fatal pipeline error, classified into a small
// fixed label set to keep cardinality bounded.
func RecordBuildError(stage string, err error, classes map[error]string) {
	errorType := "other"
	for target, name := range classes {
		if errors.Is(err, target) {
			errorType = name
			break
		}
	}
	PipelineBuildErrors.WithLabelValues(stage, errorType).Inc()
}

// RecordQuery records one service query.
func RecordQuery(operation, outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(operation, outcome).Inc()
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordResultCache counts a result cache lookup.
func RecordResultCache(operation string, hit bool) {
	if hit {
		ResultCacheHits.WithLabelValues(operation).Inc()
		return
	}
	ResultCacheMisses.WithLabelValues(operation).Inc()
}

// RecordDBQuery records a catalog query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetCorpus updates the corpus gauges.
func SetCorpus(rows, vocabulary int) {
	CorpusRows.Set(float64(rows))
	CorpusVocabularySize.Set(float64(vocabulary))
}

// SetReady flips the readiness gauge.
func SetReady(ready bool) {
	if ready {
		ServiceReady.Set(1)
		return
	}
	ServiceReady.Set(0)
}
