// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package metrics provides Prometheus instrumentation for Cineaste:
// dataset downloads, TSV parsing, loader cache efficiency, aggregation
// latency, snapshot usage, and API endpoint throughput.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset fetch metrics
	DatasetDownloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_download_duration_seconds",
			Help:    "Duration of dataset file downloads in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		},
		[]string{"file"},
	)

	DatasetDownloadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_download_bytes_total",
			Help: "Total bytes downloaded per dataset file",
		},
		[]string{"file"},
	)

	DatasetDownloadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_download_errors_total",
			Help: "Total number of failed dataset downloads",
		},
		[]string{"file", "reason"}, // "http", "status", "write", "breaker"
	)

	// Loader metrics
	DatasetRowsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_rows_parsed_total",
			Help: "Total number of rows parsed per dataset file",
		},
		[]string{"file"},
	)

	DatasetRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_rows_skipped_total",
			Help: "Total number of malformed rows skipped per dataset file",
		},
		[]string{"file"},
	)

	DatasetParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_parse_duration_seconds",
			Help:    "Duration of dataset file parsing in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"file"},
	)

	LoaderCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loader_cache_hits_total",
			Help: "Total number of memoized table reuses",
		},
	)

	LoaderCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loader_cache_misses_total",
			Help: "Total number of full dataset parses",
		},
	)

	// Aggregation metrics
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Duration of director index builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	DirectorsIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directors_indexed",
			Help: "Number of directors in the current index",
		},
	)

	// Snapshot metrics
	SnapshotHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_hits_total",
			Help: "Total number of index loads served from the snapshot store",
		},
	)

	SnapshotMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_misses_total",
			Help: "Total number of index loads requiring a full rebuild",
		},
	)

	// API endpoint metrics
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

	// Circuit breaker metrics (dataset host)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
