// Package metrics exposes Prometheus collectors for the pipeline and HTTP API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name
const Namespace = "rzqr"

// Pipeline metrics.
var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs by backend and outcome",
		},
		[]string{"backend", "status"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Wall-clock time of a full pipeline run",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 1800, 7200},
		},
		[]string{"backend"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 300},
		},
		[]string{"stage"},
	)

	SuccessRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "pipeline_success_rate",
			Help:      "Probability mass on the marked states in the last run",
		},
		[]string{"backend"},
	)

	BackendJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_jobs_total",
			Help:      "Jobs accepted by the simulator-backed job API",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register registers every collector on the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			RunsTotal,
			RunDuration,
			StageDuration,
			SuccessRate,
			BackendJobsTotal,
		)
	})
}
