package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	outcomes    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	zScore      *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		outcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zscout_outcomes_total",
				Help: "Symbol outcomes per run, by status (normal, abnormal, failed)",
			},
			[]string{"status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zscout_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		zScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zscout_z_score",
				Help: "Last computed z-score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zscout_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordOutcome records a symbol outcome.
func (r *Recorder) RecordOutcome(status string) {
	r.outcomes.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordZScore records the last computed z-score for a symbol.
func (r *Recorder) RecordZScore(symbol string, z float64) {
	r.zScore.WithLabelValues(symbol).Set(z)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop is a metrics recorder that drops everything, for tests and the plain
// CLI commands that do not expose an endpoint.
type Nop struct{}

func (Nop) RecordOutcome(string)          {}
func (Nop) RecordError(string)            {}
func (Nop) RecordZScore(string, float64)  {}
func (Nop) RecordLatency(string, float64) {}
