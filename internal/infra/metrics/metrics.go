// Package metrics defines the Prometheus metric vectors. They are wired to
// the core components through their callback hooks in control, keeping the
// core packages free of metric dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crulish_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// CacheMisses tracks cache misses, including expired and wrong-typed reads
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crulish_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheEvictions tracks entries evicted to reclaim space
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crulish_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
	)

	// CacheEntries tracks current cache occupancy
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crulish_cache_entries",
			Help: "Current number of cache entries",
		},
	)

	// ErrorsTotal tracks accepted errors per kind and severity
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crulish_errors_total",
			Help: "Total number of errors accepted by the pipeline",
		},
		[]string{"kind", "severity"},
	)

	// ErrorsThrottled tracks occurrences dropped by the throttle gate
	ErrorsThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crulish_errors_throttled_total",
			Help: "Total number of error occurrences dropped by throttling",
		},
		[]string{"kind"},
	)

	// ErrorRecoveries tracks recovery attempts per kind and outcome
	ErrorRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crulish_error_recoveries_total",
			Help: "Total number of recovery attempts",
		},
		[]string{"kind", "outcome"},
	)

	// OperationDuration tracks per-operation latency
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crulish_operation_duration_seconds",
			Help:    "Operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// OperationFailures tracks operations whose error reached the pipeline
	OperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crulish_operation_failures_total",
			Help: "Total number of failed operations",
		},
		[]string{"operation"},
	)
)
