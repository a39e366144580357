// Package metrics defines the Prometheus collectors for the sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCallsTotal tracks provider API calls by dataset and outcome.
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Analytics provider calls by dataset and status (success/error/rate_limited)",
		},
		[]string{"dataset", "status"},
	)

	// CacheResultsTotal tracks per-dataset cache decisions.
	CacheResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_cache_results_total",
			Help: "Snapshot cache decisions by dataset and result (hit/miss/degraded)",
		},
		[]string{"dataset", "result"},
	)

	// CacheWriteFailures tracks write-through failures after a successful live fetch.
	CacheWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_cache_write_failures_total",
			Help: "Failed snapshot write-throughs by dataset",
		},
		[]string{"dataset"},
	)

	// SyncsTotal tracks whole-sync outcomes.
	SyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_syncs_total",
			Help: "Full analytics syncs by status (ok/no_credentials/error)",
		},
		[]string{"status"},
	)

	// SyncDuration tracks end-to-end sync latency in seconds.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_sync_duration_seconds",
			Help:    "Full analytics sync duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// CircuitBreakerState exposes the current breaker state per component
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state by component (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerTransitionsTotal counts breaker state transitions.
	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)
