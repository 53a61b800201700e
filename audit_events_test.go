package paywall

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseAuditEvent(t *testing.T) {
	t.Run("creates event with all fields initialized", func(t *testing.T) {
		actor := ActorInfo{Payer: TEST_PAYER_ADDRESS, IPAddress: "192.168.1.1"}
		resource := ResourceInfo{Type: "endpoint", ID: "/api/premium/report"}

		before := time.Now().UTC()
		event := NewBaseAuditEvent(EventTypePaymentAttempt, actor, resource, OutcomeSuccess)
		after := time.Now().UTC()

		// Verify EventID is a valid UUID
		_, err := uuid.Parse(event.EventID)
		assert.NoError(t, err, "EventID should be a valid UUID")

		// Verify EventType
		assert.Equal(t, EventTypePaymentAttempt, event.EventType)

		// Verify Timestamp is recent and in UTC
		assert.True(t, !event.Timestamp.Before(before), "timestamp should be after test start")
		assert.True(t, !event.Timestamp.After(after), "timestamp should be before test end")
		assert.Equal(t, time.UTC, event.Timestamp.Location())

		// Verify Actor
		assert.Equal(t, TEST_PAYER_ADDRESS, event.Actor.Payer)
		assert.Equal(t, "192.168.1.1", event.Actor.IPAddress)

		// Verify Resource
		assert.Equal(t, "endpoint", event.Resource.Type)
		assert.Equal(t, "/api/premium/report", event.Resource.ID)

		// Verify Outcome
		assert.Equal(t, OutcomeSuccess, event.Outcome)

		// Verify Metadata is initialized (not nil)
		assert.NotNil(t, event.Metadata)
		assert.Equal(t, 0, len(event.Metadata))
	})

	t.Run("creates unique event IDs", func(t *testing.T) {
		event1 := NewBaseAuditEvent(EventTypePaymentAttempt, ActorInfo{}, ResourceInfo{}, OutcomeSuccess)
		event2 := NewBaseAuditEvent(EventTypePaymentAttempt, ActorInfo{}, ResourceInfo{}, OutcomeSuccess)

		assert.NotEqual(t, event1.EventID, event2.EventID, "each event should have unique ID")
	})

	t.Run("accepts different event types", func(t *testing.T) {
		eventTypes := []string{
			EventTypePaymentAttempt,
			EventTypePaymentVerified,
			EventTypeSettlement,
			EventTypeSecurityThreat,
			EventTypeSecurityBlocked,
		}

		for _, eventType := range eventTypes {
			event := NewBaseAuditEvent(eventType, ActorInfo{}, ResourceInfo{}, OutcomeSuccess)
			assert.Equal(t, eventType, event.EventType, "event type %s should be set correctly", eventType)
		}
	})
}

func TestBaseAuditEvent_JSONSerialization(t *testing.T) {
	t.Run("marshals to JSON correctly", func(t *testing.T) {
		event := NewBaseAuditEvent(
			EventTypeSettlement,
			ActorInfo{
				Payer:     TEST_PAYER_ADDRESS,
				IPAddress: "192.168.1.1",
				UserAgent: "Mozilla/5.0",
			},
			ResourceInfo{
				Type: "endpoint",
				ID:   "/api/premium/report",
				Name: "Premium Report",
			},
			OutcomeSuccess,
		)
		event.TraceID = "trace-123"
		event.SpanID = "span-456"
		event.Metadata["custom"] = "value"

		jsonBytes, err := json.Marshal(event)
		require.NoError(t, err)

		var unmarshaled BaseAuditEvent
		err = json.Unmarshal(jsonBytes, &unmarshaled)
		require.NoError(t, err)

		assert.Equal(t, event.EventID, unmarshaled.EventID)
		assert.Equal(t, event.EventType, unmarshaled.EventType)
		assert.Equal(t, TEST_PAYER_ADDRESS, unmarshaled.Actor.Payer)
		assert.Equal(t, "192.168.1.1", unmarshaled.Actor.IPAddress)
		assert.Equal(t, "endpoint", unmarshaled.Resource.Type)
		assert.Equal(t, "/api/premium/report", unmarshaled.Resource.ID)
		assert.Equal(t, "trace-123", unmarshaled.TraceID)
		assert.Equal(t, "value", unmarshaled.Metadata["custom"])
	})

	t.Run("settlement event carries payment fields", func(t *testing.T) {
		event := &SettlementEvent{
			BaseAuditEvent: NewBaseAuditEvent(EventTypeSettlement, ActorInfo{Payer: TEST_PAYER_ADDRESS}, ResourceInfo{}, OutcomeSuccess),
			PaymentID:      "pay_abc",
			Transaction:    TEST_TRANSACTION_HASH,
			Network:        NETWORK_STARKNET_SEPOLIA,
			Amount:         "10000",
			Asset:          TEST_ASSET_ADDRESS,
			Success:        true,
			LatencyMS:      42,
		}

		jsonBytes, err := json.Marshal(event)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
		assert.Equal(t, "pay_abc", decoded["payment_id"])
		assert.Equal(t, TEST_TRANSACTION_HASH, decoded["transaction"])
		assert.Equal(t, true, decoded["success"])
	})
}
