package paywall

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements MetricsProvider using Prometheus client library
type PrometheusMetrics struct {
	namespace string
	registry  *prometheus.Registry

	// Payment metrics
	paymentAttempts *prometheus.CounterVec
	paymentLatency  *prometheus.HistogramVec
	paymentErrors   *prometheus.CounterVec

	// Settlement metrics
	settlements       *prometheus.CounterVec
	settlementLatency *prometheus.HistogramVec

	// Operation metrics
	operationLatency *prometheus.HistogramVec
	operationErrors  *prometheus.CounterVec

	// Security metrics
	replaysRejected *prometheus.CounterVec

	// Revenue metrics
	revenue *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance with the given namespace.
// If registry is nil, the default registry will be used.
func NewPrometheusMetrics(namespace string, registry *prometheus.Registry) *PrometheusMetrics {
	if namespace == "" {
		namespace = "paywall"
	}

	if registry == nil {
		registry = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}

	factory := promauto.With(registry)

	p := &PrometheusMetrics{
		namespace: namespace,
		registry:  registry,
	}

	// Payment metrics
	p.paymentAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_attempts_total",
			Help:      "Total number of payment verification attempts",
		},
		[]string{"outcome", "network"},
	)

	p.paymentLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_duration_seconds",
			Help:      "Payment verification latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	p.paymentErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_errors_total",
			Help:      "Total number of payment errors by type",
		},
		[]string{"error_type", "endpoint"},
	)

	// Settlement metrics
	p.settlements = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Total number of settlement attempts",
		},
		[]string{"outcome", "network"},
	)

	p.settlementLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Settlement latency in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	// Operation metrics
	p.operationLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	p.operationErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Total number of operation errors by type",
		},
		[]string{"operation", "error_type"},
	)

	// Security metrics
	p.replaysRejected = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replays_rejected_total",
			Help:      "Total number of rejected payment replays",
		},
		[]string{"network"},
	)

	// Revenue metrics
	p.revenue = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_base_units_total",
			Help:      "Settled revenue in base units of the asset",
		},
		[]string{"network", "asset"},
	)

	return p
}

// RecordPaymentAttempt records a payment verification attempt with outcome and latency
func (p *PrometheusMetrics) RecordPaymentAttempt(ctx context.Context, success bool, latency time.Duration, labels map[string]string) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	network := labels["network"]
	if network == "" {
		network = "unknown"
	}

	p.paymentAttempts.WithLabelValues(outcome, network).Inc()
	p.paymentLatency.WithLabelValues(outcome).Observe(latency.Seconds())
}

// RecordPaymentError records a payment error by type
func (p *PrometheusMetrics) RecordPaymentError(ctx context.Context, errorType string, labels map[string]string) {
	endpoint := labels["endpoint"]
	if endpoint == "" {
		endpoint = "unknown"
	}

	p.paymentErrors.WithLabelValues(errorType, endpoint).Inc()
}

// RecordSettlement records a settlement attempt with outcome and latency
func (p *PrometheusMetrics) RecordSettlement(ctx context.Context, success bool, latency time.Duration, labels map[string]string) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	network := labels["network"]
	if network == "" {
		network = "unknown"
	}

	p.settlements.WithLabelValues(outcome, network).Inc()
	p.settlementLatency.WithLabelValues(outcome).Observe(latency.Seconds())
}

// RecordOperation records a service operation with latency
func (p *PrometheusMetrics) RecordOperation(ctx context.Context, operation string, latency time.Duration, labels map[string]string) {
	p.operationLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// RecordOperationError records a service operation error
func (p *PrometheusMetrics) RecordOperationError(ctx context.Context, operation string, errorType string) {
	p.operationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordReplayRejected records a rejected payment replay
func (p *PrometheusMetrics) RecordReplayRejected(ctx context.Context, network string) {
	if network == "" {
		network = "unknown"
	}
	p.replaysRejected.WithLabelValues(network).Inc()
}

// RecordRevenue records settled revenue in base units of the asset
func (p *PrometheusMetrics) RecordRevenue(ctx context.Context, network, asset string, baseUnits float64) {
	if baseUnits <= 0 {
		return
	}
	p.revenue.WithLabelValues(network, asset).Add(baseUnits)
}

// Handler returns an HTTP handler for the /metrics endpoint
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying Prometheus registry
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}
