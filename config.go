// github.com/vaudience/go-paywall/config.go
package paywall

import (
	"time"

	"go.uber.org/zap"
)

// Config configures the paywall middleware.
type Config struct {
	// PayTo is the Starknet address that receives payments (required)
	PayTo string

	// Network is the default CAIP-2 network id for protected routes.
	// Default: NETWORK_STARKNET_SEPOLIA
	Network string

	// Routes lists the protected routes and their prices (required)
	Routes []RouteConfig

	// Framework is the HTTP framework adapter (required)
	Framework HTTPFramework

	// Facilitator verifies and settles payments. If nil, an HTTP client
	// against FacilitatorURL is created.
	Facilitator FacilitatorClient

	// FacilitatorURL is the base URL of the x402 facilitator service.
	// Default: DEFAULT_FACILITATOR_URL
	FacilitatorURL string

	// FacilitatorTimeout bounds each facilitator call. Default: 30s
	FacilitatorTimeout time.Duration

	// Receipts stores settlement receipts. If nil, an in-memory LRU store
	// is used.
	Receipts ReceiptRepository

	// Logger is the zap logger. If nil, a no-op logger is used.
	Logger *zap.Logger

	// Observability configures metrics, audit logging and tracing (optional)
	Observability *ObservabilityConfig

	// ReplayCacheSize bounds the in-process payment replay guard.
	// Default: DEFAULT_REPLAY_CACHE_SIZE
	ReplayCacheSize int

	// ReceiptCacheSize bounds the default in-memory receipt store.
	// Default: DEFAULT_RECEIPT_CACHE_SIZE
	ReceiptCacheSize int
}

// ApplyDefaults fills in default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Network == "" {
		c.Network = NETWORK_STARKNET_SEPOLIA
	}
	if c.FacilitatorURL == "" {
		c.FacilitatorURL = DEFAULT_FACILITATOR_URL
	}
	if c.FacilitatorTimeout <= 0 {
		c.FacilitatorTimeout = 30 * time.Second
	}
	if c.ReplayCacheSize <= 0 {
		c.ReplayCacheSize = DEFAULT_REPLAY_CACHE_SIZE
	}
	if c.ReceiptCacheSize <= 0 {
		c.ReceiptCacheSize = DEFAULT_RECEIPT_CACHE_SIZE
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	for i := range c.Routes {
		if c.Routes[i].Network == "" {
			c.Routes[i].Network = c.Network
		}
		if c.Routes[i].MimeType == "" {
			c.Routes[i].MimeType = DEFAULT_MIME_TYPE
		}
		if c.Routes[i].MaxTimeoutSeconds <= 0 {
			c.Routes[i].MaxTimeoutSeconds = DEFAULT_MAX_TIMEOUT_S
		}
	}
}

// Validate checks the configuration for structural problems.
// Deep per-route validation lives in paywall.validation.go.
func (c *Config) Validate() error {
	if c.Framework == nil {
		return ErrFrameworkRequired
	}
	if c.PayTo == "" {
		return ErrPayToRequired
	}
	if len(c.Routes) == 0 {
		return ErrRoutesRequired
	}
	return ValidateConfig(c)
}
