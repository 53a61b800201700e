package paywall

import (
	"context"
	"time"
)

// NoOpMetricsProvider is a metrics provider that does nothing.
// Used as the default when metrics are disabled.
type NoOpMetricsProvider struct{}

func (n *NoOpMetricsProvider) RecordPaymentAttempt(ctx context.Context, success bool, latency time.Duration, labels map[string]string) {
}

func (n *NoOpMetricsProvider) RecordPaymentError(ctx context.Context, errorType string, labels map[string]string) {
}

func (n *NoOpMetricsProvider) RecordSettlement(ctx context.Context, success bool, latency time.Duration, labels map[string]string) {
}

func (n *NoOpMetricsProvider) RecordOperation(ctx context.Context, operation string, latency time.Duration, labels map[string]string) {
}

func (n *NoOpMetricsProvider) RecordOperationError(ctx context.Context, operation string, errorType string) {
}

func (n *NoOpMetricsProvider) RecordReplayRejected(ctx context.Context, network string) {}

func (n *NoOpMetricsProvider) RecordRevenue(ctx context.Context, network, asset string, baseUnits float64) {
}

// NoOpAuditProvider is an audit provider that does nothing.
// Used as the default when audit logging is disabled.
type NoOpAuditProvider struct{}

func (n *NoOpAuditProvider) LogPaymentAttempt(ctx context.Context, event *PaymentAttemptEvent) error {
	return nil
}

func (n *NoOpAuditProvider) LogSettlement(ctx context.Context, event *SettlementEvent) error {
	return nil
}

func (n *NoOpAuditProvider) LogSecurityEvent(ctx context.Context, event *SecurityEvent) error {
	return nil
}

// NoOpTracingProvider is a tracing provider that does nothing.
// Used as the default when tracing is disabled.
type NoOpTracingProvider struct{}

func (n *NoOpTracingProvider) StartSpan(ctx context.Context, operation string) (context.Context, Span) {
	return ctx, &noOpSpan{}
}

func (n *NoOpTracingProvider) ExtractTraceContext(ctx context.Context) TraceContext {
	return TraceContext{}
}

func (n *NoOpTracingProvider) InjectTraceContext(ctx context.Context, carrier interface{}) error {
	return nil
}

// noOpSpan is a span that does nothing
type noOpSpan struct{}

func (s *noOpSpan) SetAttribute(key string, value interface{}) {}

func (s *noOpSpan) RecordError(err error) {}

func (s *noOpSpan) End() {}
