package paywall

import (
	"time"

	x402 "github.com/mark3labs/x402-go"
)

// RouteConfig declares one protected route and its price.
//
// Pattern supports an optional verb prefix ("GET /api/report"), exact paths,
// ":param" segments and a trailing "/*" wildcard. A bare "*" protects
// everything.
type RouteConfig struct {
	// Pattern is the route pattern, e.g. "GET /api/report" or "/api/files/*"
	Pattern string `json:"pattern"`

	// Price is the required amount in base units of Asset (decimal string)
	Price string `json:"price"`

	// Asset is the token contract address payments must use
	Asset string `json:"asset"`

	// Network overrides the Config-level network for this route (optional)
	Network string `json:"network,omitempty"`

	// Description is shown to payers in the 402 response (optional)
	Description string `json:"description,omitempty"`

	// MimeType of the paid resource (optional, defaults to application/json)
	MimeType string `json:"mime_type,omitempty"`

	// MaxTimeoutSeconds is the payment validity window (optional)
	MaxTimeoutSeconds int `json:"max_timeout_seconds,omitempty"`
}

// PaymentDetails is the per-request payment state stored in the request
// context after verification. Settlement fields are filled in post-handler.
type PaymentDetails struct {
	PaymentID string               `json:"payment_id"`
	Payer     string               `json:"payer"`
	Scheme    string               `json:"scheme"`
	Network   string               `json:"network"`
	Amount    string               `json:"amount"`
	Asset     string               `json:"asset"`
	Resource  string               `json:"resource"`
	Payload   *x402.PaymentPayload `json:"-"`

	VerifiedAt  time.Time `json:"verified_at"`
	Settled     bool      `json:"settled"`
	SettledAt   time.Time `json:"settled_at,omitempty"`
	Transaction string    `json:"transaction,omitempty"`
}

// PaymentReceipt is the durable record of a settled (or failed) payment.
type PaymentReceipt struct {
	ReceiptID   string    `json:"receipt_id"`
	PaymentID   string    `json:"payment_id"`
	Payer       string    `json:"payer"`
	Network     string    `json:"network"`
	Scheme      string    `json:"scheme"`
	Amount      string    `json:"amount"`
	Asset       string    `json:"asset"`
	Resource    string    `json:"resource"`
	Transaction string    `json:"transaction,omitempty"`
	Success     bool      `json:"success"`
	ErrorReason string    `json:"error_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentRequiredResponse is the x402 402 response body.
type PaymentRequiredResponse struct {
	X402Version int                        `json:"x402Version"`
	Error       string                     `json:"error,omitempty"`
	Accepts     []*x402.PaymentRequirement `json:"accepts"`
}
