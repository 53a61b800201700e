package paywall

import (
	"context"
	"sync"

	x402 "github.com/mark3labs/x402-go"
)

// =============================================================================
// Mock Facilitator with Error Injection
// =============================================================================

// mockFacilitator is a configurable in-memory FacilitatorClient.
type mockFacilitator struct {
	mu sync.Mutex

	verifyResponse *VerifyResponse
	settleResponse *SettleResponse

	// Error injection
	verifyError error
	settleError error

	verifyCalls int
	settleCalls int

	lastPayload      *x402.PaymentPayload
	lastRequirements *x402.PaymentRequirement
}

func newMockFacilitator() *mockFacilitator {
	return &mockFacilitator{
		verifyResponse: &VerifyResponse{IsValid: true, Payer: TEST_PAYER_ADDRESS},
		settleResponse: &SettleResponse{
			Success:     true,
			Transaction: TEST_TRANSACTION_HASH,
			Network:     NETWORK_STARKNET_SEPOLIA,
			Payer:       TEST_PAYER_ADDRESS,
		},
	}
}

func (m *mockFacilitator) Verify(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*VerifyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	m.lastPayload = payload
	m.lastRequirements = requirements
	if m.verifyError != nil {
		return nil, m.verifyError
	}
	return m.verifyResponse, nil
}

func (m *mockFacilitator) Settle(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*SettleResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleCalls++
	m.lastPayload = payload
	m.lastRequirements = requirements
	if m.settleError != nil {
		return nil, m.settleError
	}
	return m.settleResponse, nil
}

func (m *mockFacilitator) verifyCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}

func (m *mockFacilitator) settleCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settleCalls
}

// =============================================================================
// Mock Receipt Repository with Error Injection
// =============================================================================

type mockReceiptRepository struct {
	mu       sync.Mutex
	receipts map[string]*PaymentReceipt
	order    []string

	storeError error
	getError   error
	listError  error
}

func newMockReceiptRepository() *mockReceiptRepository {
	return &mockReceiptRepository{
		receipts: make(map[string]*PaymentReceipt),
	}
}

func (m *mockReceiptRepository) Store(ctx context.Context, receipt *PaymentReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeError != nil {
		return m.storeError
	}
	if _, exists := m.receipts[receipt.PaymentID]; !exists {
		m.order = append(m.order, receipt.PaymentID)
	}
	m.receipts[receipt.PaymentID] = receipt
	return nil
}

func (m *mockReceiptRepository) GetByPaymentID(ctx context.Context, paymentID string) (*PaymentReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	receipt, exists := m.receipts[paymentID]
	if !exists {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

func (m *mockReceiptRepository) List(ctx context.Context, offset, limit int) ([]*PaymentReceipt, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, 0, m.listError
	}
	total := len(m.order)
	if offset >= total {
		return []*PaymentReceipt{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	result := make([]*PaymentReceipt, 0, end-offset)
	for _, id := range m.order[offset:end] {
		result = append(result, m.receipts[id])
	}
	return result, total, nil
}

func (m *mockReceiptRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

// =============================================================================
// Test Fixtures
// =============================================================================

const (
	TEST_PAYER_ADDRESS    = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	TEST_PAYTO_ADDRESS    = "0x0192938571337fbc21d9e8a1ba176a1ba8b4f8931cbf0a0ab3ba843b1f5a7a5e"
	TEST_ASSET_ADDRESS    = "0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8"
	TEST_TRANSACTION_HASH = "0x0663624487926d04b1e0b2e6a25b4d7eecbbf4a4e8e934bf3cbd3b1b1cfed971"
	TEST_PRIVATE_KEY      = "0x0139fe4d6f02e666e86a6f58e65060f115cd3c185bd9e98bd829636931458f79"
)

func testRouteConfig() RouteConfig {
	return RouteConfig{
		Pattern:           "GET /api/premium/*",
		Price:             "10000",
		Asset:             TEST_ASSET_ADDRESS,
		Network:           NETWORK_STARKNET_SEPOLIA,
		Description:       "Premium API access",
		MimeType:          CONTENT_TYPE_JSON,
		MaxTimeoutSeconds: 60,
	}
}

func testRequirements() *x402.PaymentRequirement {
	return &x402.PaymentRequirement{
		Scheme:            SCHEME_EXACT,
		Network:           NETWORK_STARKNET_SEPOLIA,
		MaxAmountRequired: "10000",
		Resource:          "http://example.com/api/premium/data",
		Description:       "Premium API access",
		MimeType:          CONTENT_TYPE_JSON,
		PayTo:             TEST_PAYTO_ADDRESS,
		MaxTimeoutSeconds: 60,
		Asset:             TEST_ASSET_ADDRESS,
	}
}

func testPaymentPayload() *x402.PaymentPayload {
	return &x402.PaymentPayload{
		X402Version: X402_VERSION,
		Scheme:      SCHEME_EXACT,
		Network:     NETWORK_STARKNET_SEPOLIA,
		Payload: &StarknetExactPayload{
			Signature: []string{"0x1", "0x2"},
			OutsideExecution: &OutsideExecution{
				Caller:        SNIP12_CALLER_ANY,
				Nonce:         "0x42",
				ExecuteAfter:  "0",
				ExecuteBefore: "99999999999",
				Calls: []StarknetCall{
					{
						To:       TEST_ASSET_ADDRESS,
						Selector: "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e",
						Calldata: []string{TEST_PAYTO_ADDRESS, "10000", "0"},
					},
				},
			},
		},
	}
}

func testPaymentHeader() string {
	header, err := EncodePaymentHeader(testPaymentPayload())
	if err != nil {
		panic(err) // OK in test setup
	}
	return header
}
