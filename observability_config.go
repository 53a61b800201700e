package paywall

// ObservabilityConfig configures observability features including metrics, audit logging, and tracing.
// All features are opt-in and can be enabled independently.
type ObservabilityConfig struct {
	// EnableMetrics enables operational metrics collection
	EnableMetrics bool

	// EnableAudit enables audit event logging
	EnableAudit bool

	// EnableTracing enables distributed tracing
	EnableTracing bool

	// MetricsProvider is the implementation for metrics collection.
	// If nil when EnableMetrics is true, a no-op provider will be used.
	MetricsProvider MetricsProvider

	// AuditProvider is the implementation for audit logging.
	// If nil when EnableAudit is true, a no-op provider will be used.
	AuditProvider AuditProvider

	// TracingProvider is the implementation for distributed tracing.
	// If nil when EnableTracing is true, a no-op provider will be used.
	TracingProvider TracingProvider

	// MetricsNamespace is the namespace prefix for metrics.
	// Default: "paywall"
	MetricsNamespace string

	// AuditSuccessEvents determines whether successful payment events should be audited.
	// This can generate high volume in production. Consider using AuditSampleRate to reduce volume.
	// Default: false
	AuditSuccessEvents bool

	// AuditSampleRate controls the sampling rate for successful payment events (0.0-1.0).
	// Only applies when AuditSuccessEvents is true.
	// 1.0 = audit all success events, 0.1 = audit 10% of success events
	// Default: 1.0 (audit all)
	AuditSampleRate float64
}

// NewObservabilityConfig creates a new ObservabilityConfig with default values
func NewObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		EnableMetrics:      false,
		EnableAudit:        false,
		EnableTracing:      false,
		MetricsNamespace:   "paywall",
		AuditSuccessEvents: false,
		AuditSampleRate:    1.0,
	}
}

// Validate validates the observability configuration
func (c *ObservabilityConfig) Validate() error {
	if c == nil {
		return nil // nil config is valid (all features disabled)
	}

	if c.AuditSampleRate < 0.0 || c.AuditSampleRate > 1.0 {
		return NewValidationError("audit_sample_rate", "must be between 0.0 and 1.0")
	}

	return nil
}

// BuildObservability assembles an Observability instance from the config,
// falling back to no-op providers for disabled or missing implementations.
func (c *ObservabilityConfig) BuildObservability() *Observability {
	if c == nil {
		return NewObservability(nil, nil, nil)
	}

	var metrics MetricsProvider
	if c.EnableMetrics {
		metrics = c.MetricsProvider
	}
	var audit AuditProvider
	if c.EnableAudit {
		audit = c.AuditProvider
	}
	var tracing TracingProvider
	if c.EnableTracing {
		tracing = c.TracingProvider
	}
	return NewObservability(metrics, audit, tracing)
}
