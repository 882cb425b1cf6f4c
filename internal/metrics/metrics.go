// Package metrics exposes Prometheus metrics for the feature engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the feature engine.
type Metrics struct {
	SweepsTotal prometheus.Counter
	SweepDur    prometheus.Histogram
	SweepErrors prometheus.Counter

	ComputeDur   prometheus.Histogram
	BarsComputed prometheus.Counter
	BarsSkipped  prometheus.Counter
	UpsertDur    prometheus.Histogram

	RequestsTotal   prometheus.Counter
	RequestFailures prometheus.Counter
}

// New registers and returns all feature engine metrics.
func New() *Metrics {
	m := &Metrics{
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_sweeps_total",
			Help: "Total periodic sweeps completed",
		}),
		SweepDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "featengine_sweep_duration_seconds",
			Help:    "Wall-clock duration of one full sweep",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		SweepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_sweep_errors_total",
			Help: "Per-pair errors encountered during sweeps",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "featengine_compute_duration_seconds",
			Help:    "Pipeline compute duration per (ticker, timeframe)",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		BarsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_bars_computed_total",
			Help: "Feature rows written to the store",
		}),
		BarsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_bars_skipped_total",
			Help: "Bars that already had persisted features",
		}),
		UpsertDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "featengine_upsert_duration_seconds",
			Help:    "Store upsert duration per batch",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_compute_requests_total",
			Help: "Inbound compute requests handled by the listener",
		}),
		RequestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featengine_compute_request_failures_total",
			Help: "Compute requests that ended in a published failure event",
		}),
	}

	prometheus.MustRegister(
		m.SweepsTotal,
		m.SweepDur,
		m.SweepErrors,
		m.ComputeDur,
		m.BarsComputed,
		m.BarsSkipped,
		m.UpsertDur,
		m.RequestsTotal,
		m.RequestFailures,
	)

	return m
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
