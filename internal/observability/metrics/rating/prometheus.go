package ratingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements RatingMetrics on a Prometheus registerer.
type PrometheusMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	handlers          *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
	ratingDelta       *prometheus.HistogramVec
	tierChanges       *prometheus.CounterVec
	runners           prometheus.Gauge
}

// NewPrometheusMetrics creates and registers the rating collectors.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operations_total",
			Help:      "Rating service operations by outcome.",
		}, []string{"operation", "service", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operation_duration_seconds",
			Help:      "Rating service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "handler_messages_total",
			Help:      "Messages processed by rating handlers by outcome.",
		}, []string{"handler", "status"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "handler_duration_seconds",
			Help:      "Rating handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		ratingDelta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "rr_delta",
			Help:      "Observed RR changes.",
			Buckets:   []float64{-50, -25, -15, -10, -5, -1, 0, 1, 5, 10, 20, 25, 30, 50},
		}, []string{"source"}),
		tierChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "tier_changes_total",
			Help:      "Tier transitions caused by RR changes.",
		}, []string{"from", "to"}),
		runners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "runners",
			Help:      "Number of signed-up runners.",
		}),
	}

	reg.MustRegister(
		m.operations,
		m.operationDuration,
		m.handlers,
		m.handlerDuration,
		m.ratingDelta,
		m.tierChanges,
		m.runners,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRatingDelta(_ context.Context, source string, delta int) {
	m.ratingDelta.WithLabelValues(source).Observe(float64(delta))
}

func (m *PrometheusMetrics) RecordTierChange(_ context.Context, from, to string) {
	m.tierChanges.WithLabelValues(from, to).Inc()
}

func (m *PrometheusMetrics) SetRunnerCount(_ context.Context, count int) {
	m.runners.Set(float64(count))
}
