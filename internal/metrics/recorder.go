// Package metrics records pipeline run, stage and fetch metrics on a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the pipeline collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal            *prometheus.CounterVec
	stageDurationSeconds *prometheus.HistogramVec
	fetchAttemptsTotal   *prometheus.CounterVec
	rowsTotal            *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skypulse_pipeline_runs_total",
			Help: "Total number of pipeline runs by final status.",
		}, []string{"status"}),
		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skypulse_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage", "status"}),
		fetchAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skypulse_fetch_attempts_total",
			Help: "Total upstream fetch attempts by series and outcome.",
		}, []string{"series", "outcome"}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skypulse_rows_total",
			Help: "Total rows produced by stage.",
		}, []string{"stage"}),
	}
	registry.MustRegister(r.runsTotal, r.stageDurationSeconds, r.fetchAttemptsTotal, r.rowsTotal)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) RecordRun(status string) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordStage(stage, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDurationSeconds.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (r *Recorder) RecordFetchAttempt(series, outcome string) {
	if r == nil {
		return
	}
	r.fetchAttemptsTotal.WithLabelValues(series, outcome).Inc()
}

func (r *Recorder) RecordRows(stage string, n int) {
	if r == nil {
		return
	}
	r.rowsTotal.WithLabelValues(stage).Add(float64(n))
}
