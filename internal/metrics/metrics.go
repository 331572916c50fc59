// Package metrics exposes lifecycle counters for the CLI. Collectors are
// package-level and become live once Register is called; the CLI writes them
// to a node-exporter textfile at exit when metrics.textfile is configured.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	lifecycleOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "lifecycle",
			Name:      "operations_total",
			Help:      "Lifecycle operations by kind and outcome.",
		}, []string{"op", "outcome"},
	)
	dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Delegated component invocations by exit class.",
		}, []string{"component", "result"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "conduit",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Wall time of delegated component invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component"},
	)
	updateChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "update",
			Name:      "checks_total",
			Help:      "Update checks by source (network or cache).",
		}, []string{"source"},
	)
	updatesAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "conduit",
			Subsystem: "update",
			Name:      "available",
			Help:      "Components with a pending update, by priority.",
		}, []string{"priority"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{lifecycleOps, dispatches, dispatchDuration, updateChecks, updatesAvailable}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Enabled reports whether Register has succeeded.
func Enabled() bool { return regOK.Load() }

// WriteTextfile writes everything g gathers to path in the Prometheus text
// format, creating the parent directory as needed.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

// IncLifecycle counts a lifecycle operation.
func IncLifecycle(op, outcome string) {
	if regOK.Load() {
		lifecycleOps.WithLabelValues(op, outcome).Inc()
	}
}

// ObserveDispatch records one delegated call.
func ObserveDispatch(component string, exitCode int, d time.Duration) {
	if !regOK.Load() {
		return
	}
	dispatches.WithLabelValues(component, exitClass(exitCode)).Inc()
	dispatchDuration.WithLabelValues(component).Observe(d.Seconds())
}

// IncUpdateCheck counts an update check served from source.
func IncUpdateCheck(source string) {
	if regOK.Load() {
		updateChecks.WithLabelValues(source).Inc()
	}
}

// SetUpdatesAvailable replaces the pending update gauge.
func SetUpdatesAvailable(byPriority map[string]int) {
	if !regOK.Load() {
		return
	}
	updatesAvailable.Reset()
	for p, n := range byPriority {
		updatesAvailable.WithLabelValues(p).Set(float64(n))
	}
}

// exitClass keeps the result label bounded.
func exitClass(code int) string {
	switch code {
	case 0:
		return "ok"
	case 124:
		return "timeout"
	case 127:
		return "spawn_error"
	default:
		if code < 0 || code > 255 {
			return "error"
		}
		return "exit_" + strconv.Itoa(code)
	}
}
