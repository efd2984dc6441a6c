// Package metrics records batch forecasting activity with Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements batch.Metrics using Prometheus.
type Recorder struct {
	registry *prometheus.Registry

	forecasts *prometheus.CounterVec
	errors    *prometheus.CounterVec
	anomalies *prometheus.CounterVec
	skipped   prometheus.Counter
	latency   *prometheus.HistogramVec
}

// New creates a recorder whose collectors live in their own registry, so
// several recorders can coexist in one process.
func New(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecasts_total",
				Help:      "Total number of forecasts computed",
			},
			[]string{"requested", "method_used"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of products whose forecast failed",
			},
			[]string{"reason"},
		),
		anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anomalies_total",
				Help:      "Total number of products with at least one anomalous observation",
			},
			[]string{"method_used"},
		),
		skipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "products_skipped_total",
				Help:      "Total number of products dropped by the allow list",
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"},
		),
	}
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordForecast records a computed forecast.
func (r *Recorder) RecordForecast(requested, methodUsed string) {
	r.forecasts.WithLabelValues(requested, methodUsed).Inc()
}

// RecordError records a failed product.
func (r *Recorder) RecordError(reason string) {
	r.errors.WithLabelValues(reason).Inc()
}

// RecordAnomaly records a product with at least one anomalous observation.
func (r *Recorder) RecordAnomaly(methodUsed string) {
	r.anomalies.WithLabelValues(methodUsed).Inc()
}

// RecordSkipped records products dropped before forecasting.
func (r *Recorder) RecordSkipped(n int) {
	r.skipped.Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// WriteFile writes the registry to path in the text exposition format, for
// pickup by a node_exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
