package paywall

import (
	"time"

	"github.com/google/uuid"
)

// BaseAuditEvent contains fields common to all audit events
type BaseAuditEvent struct {
	// EventID is a unique identifier for this event (UUID v4)
	EventID string `json:"event_id"`

	// EventType categorizes the event (e.g., "payment.attempt", "payment.settled")
	EventType string `json:"event_type"`

	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// Actor identifies who performed the action
	Actor ActorInfo `json:"actor"`

	// Resource identifies what was affected
	Resource ResourceInfo `json:"resource"`

	// Outcome indicates the result ("success", "failure", "blocked")
	Outcome string `json:"outcome"`

	// Metadata contains additional context-specific information
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// TraceID links this event to distributed traces (OpenTelemetry format)
	TraceID string `json:"trace_id,omitempty"`

	// SpanID identifies the specific span within the trace
	SpanID string `json:"span_id,omitempty"`
}

// ActorInfo identifies who performed an action
type ActorInfo struct {
	// Payer is the on-chain address that paid (for verified payments)
	Payer string `json:"payer,omitempty"`

	// IPAddress is the IP address of the actor
	IPAddress string `json:"ip_address,omitempty"`

	// UserAgent is the HTTP user agent string
	UserAgent string `json:"user_agent,omitempty"`
}

// ResourceInfo identifies what was affected by an action
type ResourceInfo struct {
	// Type is the resource type ("endpoint", "receipt", etc.)
	Type string `json:"type"`

	// ID is the unique identifier for the resource
	ID string `json:"id,omitempty"`

	// Name is a human-readable name for the resource
	Name string `json:"name,omitempty"`
}

// PaymentAttemptEvent represents a payment verification attempt
type PaymentAttemptEvent struct {
	BaseAuditEvent

	// Scheme is the payment scheme ("exact")
	Scheme string `json:"scheme"`

	// Network is the CAIP-2 network id
	Network string `json:"network"`

	// Amount is the required amount in base units
	Amount string `json:"amount"`

	// HeaderProvided indicates whether an X-Payment header was present
	HeaderProvided bool `json:"header_provided"`

	// Valid indicates whether the payment passed verification
	Valid bool `json:"valid"`

	// LatencyMS is the verification latency in milliseconds
	LatencyMS int64 `json:"latency_ms"`

	// Endpoint is the HTTP endpoint being accessed
	Endpoint string `json:"endpoint"`

	// HTTPMethod is the HTTP method (GET, POST, etc.)
	HTTPMethod string `json:"http_method"`

	// ErrorCode is the error code if verification failed
	ErrorCode string `json:"error_code,omitempty"`
}

// SettlementEvent represents a settlement attempt for a verified payment
type SettlementEvent struct {
	BaseAuditEvent

	// PaymentID identifies the verified payment being settled
	PaymentID string `json:"payment_id"`

	// Transaction is the on-chain transaction hash (when settled)
	Transaction string `json:"transaction,omitempty"`

	// Network is the CAIP-2 network id
	Network string `json:"network"`

	// Amount is the settled amount in base units
	Amount string `json:"amount"`

	// Asset is the token contract address
	Asset string `json:"asset"`

	// Success indicates whether settlement succeeded
	Success bool `json:"success"`

	// ErrorReason is the facilitator's rejection reason, if any
	ErrorReason string `json:"error_reason,omitempty"`

	// LatencyMS is the settlement latency in milliseconds
	LatencyMS int64 `json:"latency_ms"`
}

// SecurityEvent represents a security-related event (replays, suspicious activity)
type SecurityEvent struct {
	BaseAuditEvent

	// ThreatType categorizes the threat ("replay", "enumeration", "suspicious_pattern")
	ThreatType string `json:"threat_type"`

	// Severity indicates the threat severity ("low", "medium", "high", "critical")
	Severity string `json:"severity"`

	// Details provides a human-readable description of the threat
	Details string `json:"details"`

	// Indicators contains evidence supporting the threat detection
	Indicators []string `json:"indicators,omitempty"`

	// Recommendation suggests actions to take ("block_ip", "alert_admin", "rate_limit")
	Recommendation string `json:"recommendation,omitempty"`
}

// NewBaseAuditEvent creates a new BaseAuditEvent with common fields initialized
func NewBaseAuditEvent(eventType string, actor ActorInfo, resource ResourceInfo, outcome string) BaseAuditEvent {
	return BaseAuditEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Resource:  resource,
		Outcome:   outcome,
		Metadata:  make(map[string]interface{}),
	}
}

// Event type constants
const (
	EventTypePaymentAttempt  = "payment.attempt"
	EventTypePaymentVerified = "payment.verified"
	EventTypeSettlement      = "payment.settled"
	EventTypeSecurityThreat  = "security.threat"
	EventTypeSecurityBlocked = "security.blocked"
)

// Outcome constants
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBlocked = "blocked"
)

// Threat type constants
const (
	ThreatTypeReplay            = "replay"
	ThreatTypeEnumeration       = "enumeration"
	ThreatTypeSuspiciousPattern = "suspicious_pattern"
)

// Severity constants
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)
