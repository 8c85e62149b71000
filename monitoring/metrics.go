// Package monitoring exposes Prometheus metrics for the detector.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartfraud"

// MetricsCollector owns its own registry so tests and multiple servers do
// not collide on the global one.
type MetricsCollector struct {
	registry      *prometheus.Registry
	predictions   *prometheus.CounterVec
	invalidInputs *prometheus.CounterVec
	modelErrors   prometheus.Counter
	latency       prometheus.Histogram
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Form submissions scored by the classifier, by verdict.",
		}, []string{"verdict"}),
		invalidInputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_inputs_total",
			Help:      "Submissions rejected before scoring, by form field.",
		}, []string{"field"}),
		modelErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_load_errors_total",
			Help:      "Submissions that failed because the model could not be loaded.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time from form parse to rendered verdict.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	mc.registry.MustRegister(
		mc.predictions,
		mc.invalidInputs,
		mc.modelErrors,
		mc.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

// RecordPrediction counts a scored submission.
func (mc *MetricsCollector) RecordPrediction(fraud bool, elapsed time.Duration) {
	verdict := "safe"
	if fraud {
		verdict = "fraud"
	}
	mc.predictions.WithLabelValues(verdict).Inc()
	mc.latency.Observe(elapsed.Seconds())
}

func (mc *MetricsCollector) RecordInvalidInput(field string) {
	mc.invalidInputs.WithLabelValues(field).Inc()
}

func (mc *MetricsCollector) RecordModelError() {
	mc.modelErrors.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
