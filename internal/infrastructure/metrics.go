package infrastructure

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "shiprisk"

// Metrics holds the Prometheus collectors describing pipeline runs
type Metrics struct {
	Registry *prometheus.Registry

	StageRuns        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	Rows             *prometheus.GaugeVec
	Warnings         *prometheus.CounterVec
	SolverIterations prometheus.Gauge
	LogLikelihood    prometheus.Gauge
	Accuracy         *prometheus.GaugeVec
	NetBenefit       *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by final status.",
		}, []string{"stage", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage wall time.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		Rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows",
			Help:      "Row counts observed at each pipeline checkpoint.",
		}, []string{"checkpoint"}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "warnings_total",
			Help:      "Warnings raised by pipeline stages.",
		}, []string{"kind"}),
		SolverIterations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "solver_iterations",
			Help:      "IRLS iterations used by the last fit.",
		}),
		LogLikelihood: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "model_log_likelihood",
			Help:      "Training log-likelihood of the last fit.",
		}),
		Accuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "evaluation_accuracy",
			Help:      "Accuracy per evaluated subset.",
		}, []string{"subset"}),
		NetBenefit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "net_benefit_usd",
			Help:      "Net benefit per evaluated subset in USD.",
		}, []string{"subset"}),
	}

	m.Registry.MustRegister(
		m.StageRuns,
		m.StageDuration,
		m.Rows,
		m.Warnings,
		m.SolverIterations,
		m.LogLikelihood,
		m.Accuracy,
		m.NetBenefit,
	)
	return m
}

// ObserveStage records one stage execution
func (m *Metrics) ObserveStage(stage, status string, elapsed time.Duration) {
	m.StageRuns.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Handler exposes the registry over HTTP
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
