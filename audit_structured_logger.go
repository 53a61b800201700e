package paywall

import (
	"context"
	"encoding/json"
	"math/rand"

	"go.uber.org/zap"
)

// StructuredAuditLogger implements AuditProvider by logging audit events as structured JSON
// using the provided Zap logger. This is the default audit implementation.
type StructuredAuditLogger struct {
	logger       *zap.Logger
	sampleRate   float64
	auditSuccess bool
}

// NewStructuredAuditLogger creates a new StructuredAuditLogger
func NewStructuredAuditLogger(logger *zap.Logger, sampleRate float64, auditSuccess bool) *StructuredAuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sampleRate < 0.0 {
		sampleRate = 1.0
	}
	if sampleRate > 1.0 {
		sampleRate = 1.0
	}

	return &StructuredAuditLogger{
		logger:       logger,
		sampleRate:   sampleRate,
		auditSuccess: auditSuccess,
	}
}

// shouldSample returns true if the event should be logged based on sample rate
func (s *StructuredAuditLogger) shouldSample() bool {
	if s.sampleRate >= 1.0 {
		return true
	}
	return rand.Float64() < s.sampleRate
}

// logAuditEvent logs an audit event as structured JSON
func (s *StructuredAuditLogger) logAuditEvent(event interface{}, eventType string) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal audit event", zap.Error(err), zap.String("event_type", eventType))
		return err
	}

	s.logger.Info("AUDIT_EVENT",
		zap.String("event_type", eventType),
		zap.ByteString("event", eventJSON),
	)

	return nil
}

// LogPaymentAttempt logs a payment verification attempt event
func (s *StructuredAuditLogger) LogPaymentAttempt(ctx context.Context, event *PaymentAttemptEvent) error {
	if event == nil {
		return nil
	}

	// Sample successful payment events based on configuration
	if event.Outcome == OutcomeSuccess {
		if !s.auditSuccess {
			return nil // Skip success events
		}
		if !s.shouldSample() {
			return nil // Skip this event based on sample rate
		}
	}

	// Always log failures and blocked events
	return s.logAuditEvent(event, event.EventType)
}

// LogSettlement logs a settlement event. Settlements move money, so they
// are never sampled away.
func (s *StructuredAuditLogger) LogSettlement(ctx context.Context, event *SettlementEvent) error {
	if event == nil {
		return nil
	}
	return s.logAuditEvent(event, EventTypeSettlement)
}

// LogSecurityEvent logs a security-related event
func (s *StructuredAuditLogger) LogSecurityEvent(ctx context.Context, event *SecurityEvent) error {
	if event == nil {
		return nil
	}
	return s.logAuditEvent(event, event.EventType)
}
