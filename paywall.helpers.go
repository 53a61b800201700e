// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains shared helpers: the X-Payment header codec, payment id
// generation and amount parsing.
package paywall

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	x402 "github.com/mark3labs/x402-go"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewPaymentID generates a short unique payment id.
func NewPaymentID() (string, error) {
	id, err := gonanoid.New(21)
	if err != nil {
		return "", NewInternalError("payment_id_generation", err)
	}
	return "pay_" + id, nil
}

// NewReceiptID generates a short unique receipt id.
func NewReceiptID() (string, error) {
	id, err := gonanoid.New(21)
	if err != nil {
		return "", NewInternalError("receipt_id_generation", err)
	}
	return "rcpt_" + id, nil
}

// EncodePaymentHeader encodes a payment payload as the base64 JSON carried
// in the X-Payment request header.
func EncodePaymentHeader(payload *x402.PaymentPayload) (string, error) {
	if payload == nil {
		return "", NewValidationError("payload", "cannot be nil")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", NewInternalError("payment_header_marshal", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePaymentHeader decodes the base64 JSON X-Payment request header.
// Returns ErrMalformedPaymentHeader for anything undecodable so callers
// answer 402, never 500.
func DecodePaymentHeader(header string) (*x402.PaymentPayload, error) {
	header = strings.TrimSpace(header)
	if header == "" || len(header) > MAX_PAYMENT_HEADER_B {
		return nil, ErrMalformedPaymentHeader
	}

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		// Some clients send URL-safe base64
		raw, err = base64.URLEncoding.DecodeString(header)
		if err != nil {
			return nil, ErrMalformedPaymentHeader
		}
	}

	var payload x402.PaymentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedPaymentHeader
	}
	return &payload, nil
}

// EncodeSettlementHeader encodes a settlement result as the base64 JSON
// exposed in the X-Payment-Response header.
func EncodeSettlementHeader(settlement *SettleResponse) (string, error) {
	if settlement == nil {
		return "", NewValidationError("settlement", "cannot be nil")
	}
	raw, err := json.Marshal(settlement)
	if err != nil {
		return "", NewInternalError("settlement_header_marshal", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// PaymentDigest returns the hex SHA-256 of the raw payment header. Used as
// the replay-guard key: two requests carrying the identical signed payment
// produce the identical digest.
func PaymentDigest(header string) string {
	sum := sha256.Sum256([]byte(header))
	return hex.EncodeToString(sum[:])
}

// PaymentFromContext returns the verified payment details attached to a
// request context, or nil when the request did not pass the paywall.
func PaymentFromContext(ctx context.Context) *PaymentDetails {
	details, _ := ctx.Value(contextKeyPaymentInfo).(*PaymentDetails)
	return details
}

// ParseAmount parses a base-unit decimal amount string.
func ParseAmount(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || len(amount) > MAX_PRICE_DIGITS {
		return nil, ErrInvalidPrice
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok || value.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	return value, nil
}
