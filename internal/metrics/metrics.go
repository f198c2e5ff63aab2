// Package metrics provides Prometheus instrumentation for startup
// orchestration and the application server.
//
// Collection is opt-in: when InitRegistry has not been called every
// recording function is a no-op, so disabled deployments pay nothing.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry

	probeAttempts  *prometheus.CounterVec
	probeDuration  *prometheus.HistogramVec
	probeOutcomes  *prometheus.CounterVec
	revisionsApply prometheus.Counter
)

// InitRegistry creates the process registry and registers all collectors.
// Calling it twice is a no-op.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()
	if registry != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	probeAttempts = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "autobus_readiness_attempts_total",
			Help: "Readiness probe attempts by check and result",
		},
		[]string{"check", "result"}, // result: ok, fail
	)
	probeDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autobus_readiness_probe_duration_seconds",
			Help:    "Total wall-clock duration of a readiness probe",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"check"},
	)
	probeOutcomes = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "autobus_readiness_outcomes_total",
			Help: "Readiness probe terminal outcomes by check",
		},
		[]string{"check", "outcome"}, // outcome: ready, exhausted
	)
	revisionsApply = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "autobus_migration_apply_runs_total",
			Help: "Number of migration apply runs",
		},
	)

	registry = reg
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// Registry returns the process registry, or nil when disabled.
func Registry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// ObserveProbeAttempt records a single probe attempt.
func ObserveProbeAttempt(check string, ok bool) {
	if !IsEnabled() {
		return
	}
	result := "fail"
	if ok {
		result = "ok"
	}
	probeAttempts.WithLabelValues(check, result).Inc()
}

// ObserveProbeOutcome records the terminal outcome and total duration of
// a readiness probe.
func ObserveProbeOutcome(check, outcome string, elapsed time.Duration) {
	if !IsEnabled() {
		return
	}
	probeOutcomes.WithLabelValues(check, outcome).Inc()
	probeDuration.WithLabelValues(check).Observe(elapsed.Seconds())
}

// ObserveMigrationApply records one migration apply run.
func ObserveMigrationApply() {
	if !IsEnabled() {
		return
	}
	revisionsApply.Inc()
}
