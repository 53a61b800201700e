package paywall

import (
	"context"
	"time"
)

// Observability provides a centralized access point for all observability features
// including metrics, audit logging, and tracing.
type Observability struct {
	Metrics MetricsProvider
	Audit   AuditProvider
	Tracing TracingProvider
}

// MetricsProvider defines the interface for recording operational metrics.
// Implementations can integrate with Prometheus, OpenTelemetry, or custom backends.
type MetricsProvider interface {
	// RecordPaymentAttempt records a payment verification attempt with outcome and latency
	RecordPaymentAttempt(ctx context.Context, success bool, latency time.Duration, labels map[string]string)

	// RecordPaymentError records a payment error by type
	RecordPaymentError(ctx context.Context, errorType string, labels map[string]string)

	// RecordSettlement records a settlement attempt with outcome and latency
	RecordSettlement(ctx context.Context, success bool, latency time.Duration, labels map[string]string)

	// RecordOperation records a service operation with latency
	RecordOperation(ctx context.Context, operation string, latency time.Duration, labels map[string]string)

	// RecordOperationError records a service operation error
	RecordOperationError(ctx context.Context, operation string, errorType string)

	// RecordReplayRejected records a rejected payment replay
	RecordReplayRejected(ctx context.Context, network string)

	// RecordRevenue records settled revenue in base units of the asset
	RecordRevenue(ctx context.Context, network, asset string, baseUnits float64)
}

// AuditProvider defines the interface for audit logging.
// Implementations should ensure audit logs are immutable, tamper-evident,
// and retained according to compliance requirements.
type AuditProvider interface {
	// LogPaymentAttempt logs a payment verification attempt event
	LogPaymentAttempt(ctx context.Context, event *PaymentAttemptEvent) error

	// LogSettlement logs a settlement event
	LogSettlement(ctx context.Context, event *SettlementEvent) error

	// LogSecurityEvent logs a security-related event (replays, suspicious activity, etc.)
	LogSecurityEvent(ctx context.Context, event *SecurityEvent) error
}

// TracingProvider defines the interface for distributed tracing.
// Implementations can integrate with OpenTelemetry, Jaeger, or custom backends.
type TracingProvider interface {
	// StartSpan starts a new span for the given operation
	StartSpan(ctx context.Context, operation string) (context.Context, Span)

	// ExtractTraceContext extracts trace context from the provided context
	ExtractTraceContext(ctx context.Context) TraceContext

	// InjectTraceContext injects trace context into a carrier (e.g., HTTP headers)
	InjectTraceContext(ctx context.Context, carrier interface{}) error
}

// Span represents a distributed tracing span
type Span interface {
	// SetAttribute sets an attribute on the span
	SetAttribute(key string, value interface{})

	// RecordError records an error that occurred during the span
	RecordError(err error)

	// End completes the span
	End()
}

// TraceContext represents distributed tracing context
type TraceContext struct {
	TraceID string
	SpanID  string
	Flags   byte
}

// NewObservability creates a new Observability instance with the provided providers.
// If any provider is nil, a no-op implementation will be used.
func NewObservability(metrics MetricsProvider, audit AuditProvider, tracing TracingProvider) *Observability {
	if metrics == nil {
		metrics = &NoOpMetricsProvider{}
	}
	if audit == nil {
		audit = &NoOpAuditProvider{}
	}
	if tracing == nil {
		tracing = &NoOpTracingProvider{}
	}

	return &Observability{
		Metrics: metrics,
		Audit:   audit,
		Tracing: tracing,
	}
}
