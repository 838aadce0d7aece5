package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	snapshotCaptures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "procsnap",
			Subsystem: "snapshot",
			Name:      "captures_total",
			Help:      "Number of process table snapshots taken.",
		},
	)
	snapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "procsnap",
			Subsystem: "snapshot",
			Name:      "capture_duration_seconds",
			Help:      "Time spent enumerating and querying the process table.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	visibleProcesses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "procsnap",
			Subsystem: "snapshot",
			Name:      "visible_processes",
			Help:      "Process count in the most recent snapshot.",
		},
	)
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procsnap",
			Subsystem: "action",
			Name:      "dispatched_total",
			Help:      "Per-pid action outcomes by action and result.",
		}, []string{"action", "result"},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procsnap",
			Subsystem: "export",
			Name:      "renders_total",
			Help:      "Number of export renders by format.",
		}, []string{"format"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{snapshotCaptures, snapshotDuration, visibleProcesses, actionsTotal, exportsTotal}
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

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func ObserveCapture(processes int, seconds float64) {
	if regOK.Load() {
		snapshotCaptures.Inc()
		snapshotDuration.Observe(seconds)
		visibleProcesses.Set(float64(processes))
	}
}

func IncAction(action string, ok bool) {
	if regOK.Load() {
		result := "ok"
		if !ok {
			result = "fail"
		}
		actionsTotal.WithLabelValues(action, result).Inc()
	}
}

func IncExport(format string) {
	if regOK.Load() {
		exportsTotal.WithLabelValues(format).Inc()
	}
}
