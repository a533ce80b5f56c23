// Package metrics exposes prometheus collectors for retention runs.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snaprotate"

type Metrics struct {
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	classified     *prometheus.CounterVec
	snapshots      *prometheus.GaugeVec
	deleteFailures *prometheus.CounterVec
	created        *prometheus.CounterVec
	lastSuccess    *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prune_runs_total",
				Help:      "Retention runs per source and result",
			},
			[]string{"source", "result"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "prune_run_duration_seconds",
				Help:      "Duration of retention runs",
				Buckets:   []float64{.01, .1, .5, 1, 5, 30, 120, 600, 1800},
			},
			[]string{"source"},
		),
		classified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_classified_total",
				Help:      "Snapshots classified per status",
			},
			[]string{"source", "status"},
		),
		snapshots: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshots",
				Help:      "Snapshots present per source after the last run",
			},
			[]string{"source"},
		),
		deleteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prune_failures_total",
				Help:      "Snapshots that could not be quarantined or deleted",
			},
			[]string{"source"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_created_total",
				Help:      "Snapshot creations per source and result",
			},
			[]string{"source", "result"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful retention run",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(
		m.runs,
		m.runDuration,
		m.classified,
		m.snapshots,
		m.deleteFailures,
		m.created,
		m.lastSuccess,
	)

	return m
}

func (m *Metrics) ObserveRun(source string, err error, duration time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(source, result(err)).Inc()
	m.runDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err == nil {
		m.lastSuccess.WithLabelValues(source).Set(float64(at.Unix()))
	}
}

// ObserveClassification records per-status counts and the number of
// snapshots that remain.
func (m *Metrics) ObserveClassification(source string, byStatus map[string]int, remaining int) {
	if m == nil {
		return
	}
	for status, n := range byStatus {
		m.classified.WithLabelValues(source, status).Add(float64(n))
	}
	m.snapshots.WithLabelValues(source).Set(float64(remaining))
}

func (m *Metrics) AddFailures(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.deleteFailures.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveCreate(source string, err error) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(source, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
