// Package metrics exposes Prometheus collectors for sync runs, detection
// tiers, source fetches and circuit breakers.
//
// Collectors are registered on the default registry through promauto, so
// the /metrics handler only needs promhttp.Handler().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// SyncRunsTotal counts completed sync runs by mode (apply, plan).
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_sync_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"mode"},
	)

	// SyncDuration tracks the wall time of sync runs.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proxydash_sync_duration_seconds",
			Help:    "Duration of reconciliation runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// SyncApplicationsTotal counts per-route outcomes (created, updated, unchanged, errored, removed).
	SyncApplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_sync_applications_total",
			Help: "Applications touched by reconciliation, by outcome",
		},
		[]string{"outcome"},
	)

	// SourceFetchTotal counts instance fetches by mode and result.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_source_fetch_total",
			Help: "Proxy manager instance fetches by mode and result",
		},
		[]string{"mode", "result"},
	)

	// DetectionsTotal counts detection results by method; "none" when no tier matched.
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_detections_total",
			Help: "Detection cascade outcomes by method",
		},
		[]string{"method"},
	)

	// CatalogRefreshTotal counts catalog refreshes by source (remote, snapshot) and result.
	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_catalog_refresh_total",
			Help: "Online catalog refreshes by source and result",
		},
		[]string{"source", "result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxydash_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydash_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordSync records one finished run and its per-outcome counts.
func RecordSync(mode string, d time.Duration, outcomes map[string]int) {
	SyncRunsTotal.WithLabelValues(mode).Inc()
	SyncDuration.Observe(d.Seconds())
	for outcome, n := range outcomes {
		if n > 0 {
			SyncApplicationsTotal.WithLabelValues(outcome).Add(float64(n))
		}
	}
}

// RecordBreakerTransition updates breaker gauges from a gobreaker state change.
func RecordBreakerTransition(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
