// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains the facilitator client. Verification and settlement are
// delegated entirely to an external x402 facilitator service; this client
// only moves wire JSON.
package paywall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	x402 "github.com/mark3labs/x402-go"
	"go.uber.org/zap"
)

// VerifyResponse is the facilitator's /verify result (x402 wire format).
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResponse is the facilitator's /settle result (x402 wire format).
// Its base64-encoded JSON is exposed to clients in the X-Payment-Response
// header.
type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network,omitempty"`
	Payer       string `json:"payer,omitempty"`
}

// facilitatorRequest is the shared request body for /verify and /settle.
type facilitatorRequest struct {
	X402Version         int                      `json:"x402Version"`
	PaymentPayload      *x402.PaymentPayload     `json:"paymentPayload"`
	PaymentRequirements *x402.PaymentRequirement `json:"paymentRequirements"`
}

// FacilitatorClient verifies and settles x402 payments.
type FacilitatorClient interface {
	Verify(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*VerifyResponse, error)
	Settle(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*SettleResponse, error)
}

// HTTPFacilitatorClient talks to a facilitator service over HTTP.
type HTTPFacilitatorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPFacilitatorClient creates a facilitator client against baseURL.
func NewHTTPFacilitatorClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPFacilitatorClient {
	if baseURL == "" {
		baseURL = DEFAULT_FACILITATOR_URL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPFacilitatorClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named(CLASS_FACILITATOR_CLIENT),
	}
}

// Verify implements FacilitatorClient.Verify
func (f *HTTPFacilitatorClient) Verify(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*VerifyResponse, error) {
	var result VerifyResponse
	if err := f.post(ctx, FACILITATOR_PATH_VERIFY, payload, requirements, &result); err != nil {
		return nil, err
	}

	f.logger.Debug("Payment verified",
		zap.Bool("is_valid", result.IsValid),
		zap.String("invalid_reason", result.InvalidReason),
		zap.String(LOG_FIELD_PAYER, result.Payer))

	return &result, nil
}

// Settle implements FacilitatorClient.Settle
func (f *HTTPFacilitatorClient) Settle(ctx context.Context, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement) (*SettleResponse, error) {
	var result SettleResponse
	if err := f.post(ctx, FACILITATOR_PATH_SETTLE, payload, requirements, &result); err != nil {
		return nil, err
	}

	f.logger.Debug("Payment settled",
		zap.Bool("success", result.Success),
		zap.String(LOG_FIELD_TRANSACTION, result.Transaction),
		zap.String(LOG_FIELD_NETWORK, result.Network))

	return &result, nil
}

func (f *HTTPFacilitatorClient) post(ctx context.Context, path string, payload *x402.PaymentPayload, requirements *x402.PaymentRequirement, out interface{}) error {
	body, err := json.Marshal(&facilitatorRequest{
		X402Version:         X402_VERSION,
		PaymentPayload:      payload,
		PaymentRequirements: requirements,
	})
	if err != nil {
		return NewInternalError("facilitator_marshal", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return NewInternalError("facilitator_request", err)
	}
	req.Header.Set(HEADER_CONTENT_TYPE, CONTENT_TYPE_JSON)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("Facilitator call failed",
			zap.String(LOG_FIELD_PATH, path),
			zap.Error(err))
		return NewExternalError("facilitator", path, err)
	}
	defer resp.Body.Close()

	// 4xx responses still carry a decodable verify/settle body with the
	// rejection reason.
	if resp.StatusCode >= http.StatusInternalServerError {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		f.logger.Error("Facilitator returned server error",
			zap.String(LOG_FIELD_PATH, path),
			zap.Int(LOG_FIELD_STATUS_CODE, resp.StatusCode),
			zap.ByteString("body", raw))
		return NewExternalError("facilitator", path, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewExternalError("facilitator", path, err)
	}
	return nil
}
