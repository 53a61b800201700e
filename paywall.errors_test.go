package paywall

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrorWrapping(t *testing.T) {
	t.Run("payment errors wrap ErrPaymentRequired", func(t *testing.T) {
		for _, err := range []error{
			ErrMalformedPaymentHeader,
			ErrVerificationFailed,
			ErrSettlementFailed,
			ErrPaymentReplayed,
			ErrUnsupportedScheme,
			ErrUnsupportedNetwork,
		} {
			assert.True(t, IsPaymentRequiredError(err), err.Error())
		}
	})

	t.Run("configuration errors wrap ErrInvalidConfiguration", func(t *testing.T) {
		for _, err := range []error{
			ErrFrameworkRequired,
			ErrPayToRequired,
			ErrRoutesRequired,
			ErrFacilitatorRequired,
			ErrInvalidRoutePattern,
			ErrInvalidPrice,
			ErrInvalidAddress,
		} {
			assert.True(t, IsConfigurationError(err), err.Error())
		}
	})

	t.Run("receipt not found wraps ErrNotFound", func(t *testing.T) {
		assert.True(t, IsNotFoundError(ErrReceiptNotFound))
	})

	t.Run("signer errors wrap ErrInvalidInput", func(t *testing.T) {
		assert.True(t, IsInvalidInputError(ErrAmountExceedsLimit))
		assert.True(t, IsInvalidInputError(ErrNoMatchingToken))
	})
}

func TestWrapError(t *testing.T) {
	t.Run("keeps sentinel identity", func(t *testing.T) {
		wrapped := WrapError(ErrVerificationFailed, "insufficient_funds")
		assert.ErrorIs(t, wrapped, ErrVerificationFailed)
		assert.ErrorIs(t, wrapped, ErrPaymentRequired)
		assert.Contains(t, wrapped.Error(), "insufficient_funds")
	})

	t.Run("formatted context", func(t *testing.T) {
		wrapped := WrapErrorf(ErrUnsupportedScheme, "scheme %q", "permit")
		assert.ErrorIs(t, wrapped, ErrUnsupportedScheme)
		assert.Contains(t, wrapped.Error(), `"permit"`)
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "context"))
		assert.NoError(t, WrapErrorf(nil, "context %d", 1))
	})
}

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil is 200", nil, 200},
		{"payment required", ErrVerificationFailed, 402},
		{"replay", ErrPaymentReplayed, 402},
		{"not found", ErrReceiptNotFound, 404},
		{"invalid input", ErrAmountExceedsLimit, 400},
		{"timeout", ErrTimeout, 408},
		{"external", ErrFacilitatorUnreachable, 502},
		{"internal", ErrInternal, 500},
		{"unknown", errors.New("mystery"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorToHTTPStatus(tt.err))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, NewErrorResponse(nil))
	})

	t.Run("carries message and code", func(t *testing.T) {
		response := NewErrorResponse(ErrReceiptNotFound)
		require.NotNil(t, response)
		assert.Equal(t, 404, response.Code)
		assert.Contains(t, response.Error, ERROR_RECEIPT_NOT_FOUND)
	})
}
