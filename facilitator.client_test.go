package paywall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPFacilitatorClient(t *testing.T) {
	ctx := context.Background()

	t.Run("verify posts x402 envelope and decodes result", func(t *testing.T) {
		var received facilitatorRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, FACILITATOR_PATH_VERIFY, r.URL.Path)
			assert.Equal(t, CONTENT_TYPE_JSON, r.Header.Get(HEADER_CONTENT_TYPE))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			_ = json.NewEncoder(w).Encode(&VerifyResponse{IsValid: true, Payer: TEST_PAYER_ADDRESS})
		}))
		defer server.Close()

		client := NewHTTPFacilitatorClient(server.URL, time.Second, zap.NewNop())
		result, err := client.Verify(ctx, testPaymentPayload(), testRequirements())
		require.NoError(t, err)

		assert.True(t, result.IsValid)
		assert.Equal(t, TEST_PAYER_ADDRESS, result.Payer)
		assert.Equal(t, X402_VERSION, received.X402Version)
		require.NotNil(t, received.PaymentRequirements)
		assert.Equal(t, "10000", received.PaymentRequirements.MaxAmountRequired)
	})

	t.Run("settle decodes settlement result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, FACILITATOR_PATH_SETTLE, r.URL.Path)
			_ = json.NewEncoder(w).Encode(&SettleResponse{
				Success:     true,
				Transaction: TEST_TRANSACTION_HASH,
				Network:     NETWORK_STARKNET_SEPOLIA,
				Payer:       TEST_PAYER_ADDRESS,
			})
		}))
		defer server.Close()

		client := NewHTTPFacilitatorClient(server.URL, time.Second, zap.NewNop())
		result, err := client.Settle(ctx, testPaymentPayload(), testRequirements())
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, TEST_TRANSACTION_HASH, result.Transaction)
	})

	t.Run("4xx body with rejection reason is decoded, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(&VerifyResponse{IsValid: false, InvalidReason: "invalid_signature"})
		}))
		defer server.Close()

		client := NewHTTPFacilitatorClient(server.URL, time.Second, zap.NewNop())
		result, err := client.Verify(ctx, testPaymentPayload(), testRequirements())
		require.NoError(t, err)

		assert.False(t, result.IsValid)
		assert.Equal(t, "invalid_signature", result.InvalidReason)
	})

	t.Run("5xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewHTTPFacilitatorClient(server.URL, time.Second, zap.NewNop())
		_, err := client.Verify(ctx, testPaymentPayload(), testRequirements())
		assert.Error(t, err)
	})

	t.Run("unreachable facilitator is an error", func(t *testing.T) {
		client := NewHTTPFacilitatorClient("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop())
		_, err := client.Verify(ctx, testPaymentPayload(), testRequirements())
		assert.Error(t, err)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer server.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		client := NewHTTPFacilitatorClient(server.URL, 5*time.Second, zap.NewNop())
		_, err := client.Verify(cancelled, testPaymentPayload(), testRequirements())
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		client := NewHTTPFacilitatorClient("", 0, nil)
		assert.Equal(t, DEFAULT_FACILITATOR_URL, client.baseURL)
		assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	})

	t.Run("trailing slash trimmed from base url", func(t *testing.T) {
		client := NewHTTPFacilitatorClient("https://facilitator.example.com/", time.Second, nil)
		assert.Equal(t, "https://facilitator.example.com", client.baseURL)
	})
}
