package paywall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupServiceTest(t *testing.T) (*PaymentService, *mockFacilitator, *mockReceiptRepository) {
	t.Helper()
	facilitator := newMockFacilitator()
	receipts := newMockReceiptRepository()
	service, err := NewPaymentService(facilitator, receipts, zap.NewNop(), nil, TEST_PAYTO_ADDRESS, 0)
	require.NoError(t, err)
	return service, facilitator, receipts
}

func TestNewPaymentService(t *testing.T) {
	t.Run("requires a facilitator", func(t *testing.T) {
		_, err := NewPaymentService(nil, newMockReceiptRepository(), zap.NewNop(), nil, TEST_PAYTO_ADDRESS, 0)
		assert.ErrorIs(t, err, ErrFacilitatorRequired)
	})

	t.Run("requires a receipt store", func(t *testing.T) {
		_, err := NewPaymentService(newMockFacilitator(), nil, zap.NewNop(), nil, TEST_PAYTO_ADDRESS, 0)
		assert.Error(t, err)
	})

	t.Run("nil logger and observability default", func(t *testing.T) {
		service, err := NewPaymentService(newMockFacilitator(), newMockReceiptRepository(), nil, nil, TEST_PAYTO_ADDRESS, 0)
		require.NoError(t, err)
		assert.NotNil(t, service)
	})
}

func TestBuildRequirements(t *testing.T) {
	service, _, _ := setupServiceTest(t)
	route := testRouteConfig()

	requirements := service.BuildRequirements(&route, "https://api.example.com/api/premium/data")

	assert.Equal(t, SCHEME_EXACT, requirements.Scheme)
	assert.Equal(t, NETWORK_STARKNET_SEPOLIA, requirements.Network)
	assert.Equal(t, "10000", requirements.MaxAmountRequired)
	assert.Equal(t, "https://api.example.com/api/premium/data", requirements.Resource)
	assert.Equal(t, TEST_PAYTO_ADDRESS, requirements.PayTo)
	assert.Equal(t, TEST_ASSET_ADDRESS, requirements.Asset)
	assert.Equal(t, 60, requirements.MaxTimeoutSeconds)
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("valid payment", func(t *testing.T) {
		service, facilitator, _ := setupServiceTest(t)

		details, err := service.VerifyPayment(ctx, testPaymentHeader(), testRequirements())
		require.NoError(t, err)

		assert.Equal(t, TEST_PAYER_ADDRESS, details.Payer)
		assert.Equal(t, SCHEME_EXACT, details.Scheme)
		assert.Equal(t, NETWORK_STARKNET_SEPOLIA, details.Network)
		assert.Equal(t, "10000", details.Amount)
		assert.NotEmpty(t, details.PaymentID)
		assert.NotNil(t, details.Payload)
		assert.False(t, details.Settled)
		assert.Equal(t, 1, facilitator.verifyCallCount())
	})

	t.Run("malformed header", func(t *testing.T) {
		service, facilitator, _ := setupServiceTest(t)

		_, err := service.VerifyPayment(ctx, "not-base64!!!", testRequirements())
		assert.ErrorIs(t, err, ErrMalformedPaymentHeader)
		assert.Equal(t, 0, facilitator.verifyCallCount())
	})

	t.Run("scheme mismatch", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		payload := testPaymentPayload()
		payload.Scheme = "permit"
		header, err := EncodePaymentHeader(payload)
		require.NoError(t, err)

		_, err = service.VerifyPayment(ctx, header, testRequirements())
		assert.ErrorIs(t, err, ErrUnsupportedScheme)
	})

	t.Run("network mismatch", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		payload := testPaymentPayload()
		payload.Network = NETWORK_STARKNET_MAINNET
		header, err := EncodePaymentHeader(payload)
		require.NoError(t, err)

		_, err = service.VerifyPayment(ctx, header, testRequirements())
		assert.ErrorIs(t, err, ErrUnsupportedNetwork)
	})

	t.Run("replayed header is rejected", func(t *testing.T) {
		service, facilitator, _ := setupServiceTest(t)
		header := testPaymentHeader()

		_, err := service.VerifyPayment(ctx, header, testRequirements())
		require.NoError(t, err)

		_, err = service.VerifyPayment(ctx, header, testRequirements())
		assert.ErrorIs(t, err, ErrPaymentReplayed)
		// Second attempt never reaches the facilitator.
		assert.Equal(t, 1, facilitator.verifyCallCount())
	})

	t.Run("rejected header is not replay-guarded", func(t *testing.T) {
		service, facilitator, _ := setupServiceTest(t)
		facilitator.verifyResponse = &VerifyResponse{IsValid: false, InvalidReason: "insufficient_funds"}
		header := testPaymentHeader()

		_, err := service.VerifyPayment(ctx, header, testRequirements())
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "insufficient_funds")

		// The same header may retry after the first rejection.
		facilitator.verifyResponse = &VerifyResponse{IsValid: true, Payer: TEST_PAYER_ADDRESS}
		_, err = service.VerifyPayment(ctx, header, testRequirements())
		assert.NoError(t, err)
	})

	t.Run("facilitator error propagates", func(t *testing.T) {
		service, facilitator, _ := setupServiceTest(t)
		facilitator.verifyError = NewExternalError("facilitator", "verify", errors.New("connection refused"))

		_, err := service.VerifyPayment(ctx, testPaymentHeader(), testRequirements())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPaymentReplayed)
	})
}

func TestSettlePayment(t *testing.T) {
	ctx := context.Background()

	verifiedDetails := func(t *testing.T, service *PaymentService) *PaymentDetails {
		t.Helper()
		details, err := service.VerifyPayment(ctx, testPaymentHeader(), testRequirements())
		require.NoError(t, err)
		return details
	}

	t.Run("successful settlement", func(t *testing.T) {
		service, _, receipts := setupServiceTest(t)
		details := verifiedDetails(t, service)

		result, err := service.SettlePayment(ctx, details, testRequirements())
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, TEST_TRANSACTION_HASH, result.Transaction)
		assert.True(t, details.Settled)
		assert.Equal(t, TEST_TRANSACTION_HASH, details.Transaction)
		assert.WithinDuration(t, time.Now(), details.SettledAt, 5*time.Second)

		// Receipt recorded
		assert.Equal(t, 1, receipts.count())
		receipt, err := receipts.GetByPaymentID(ctx, details.PaymentID)
		require.NoError(t, err)
		assert.True(t, receipt.Success)
		assert.Equal(t, TEST_TRANSACTION_HASH, receipt.Transaction)
		assert.Equal(t, TEST_PAYER_ADDRESS, receipt.Payer)
	})

	t.Run("facilitator rejection records failed receipt", func(t *testing.T) {
		service, facilitator, receipts := setupServiceTest(t)
		facilitator.settleResponse = &SettleResponse{Success: false, ErrorReason: "nonce_already_used"}
		details := verifiedDetails(t, service)

		result, err := service.SettlePayment(ctx, details, testRequirements())
		assert.ErrorIs(t, err, ErrSettlementFailed)
		assert.Contains(t, err.Error(), "nonce_already_used")
		require.NotNil(t, result)
		assert.False(t, details.Settled)

		receipt, getErr := receipts.GetByPaymentID(ctx, details.PaymentID)
		require.NoError(t, getErr)
		assert.False(t, receipt.Success)
		assert.Equal(t, "nonce_already_used", receipt.ErrorReason)
	})

	t.Run("facilitator unreachable records failed receipt", func(t *testing.T) {
		service, facilitator, receipts := setupServiceTest(t)
		facilitator.settleError = NewExternalError("facilitator", "settle", errors.New("timeout"))
		details := verifiedDetails(t, service)

		_, err := service.SettlePayment(ctx, details, testRequirements())
		assert.Error(t, err)
		assert.Equal(t, 1, receipts.count())
	})

	t.Run("nil details rejected", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)
		_, err := service.SettlePayment(ctx, nil, testRequirements())
		assert.Error(t, err)
	})

	t.Run("receipt store failure does not fail settlement", func(t *testing.T) {
		service, _, receipts := setupServiceTest(t)
		receipts.storeError = errors.New("disk full")
		details := verifiedDetails(t, service)

		result, err := service.SettlePayment(ctx, details, testRequirements())
		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}
