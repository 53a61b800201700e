// Package paywall provides x402 payment middleware for Go web applications.
//
// This file contains all constants following CODE_RULES.md principle: NO MAGIC STRINGS.
// Every string literal in the codebase must be defined here as a constant.
package paywall

const (
	// Package metadata
	PACKAGE_NAME    = "go-paywall"
	PACKAGE_VERSION = "1.0.0"

	// x402 protocol
	X402_VERSION            = 1
	SCHEME_EXACT            = "exact"
	DEFAULT_SCHEME          = SCHEME_EXACT
	DEFAULT_MIME_TYPE       = "application/json"
	DEFAULT_MAX_TIMEOUT_S   = 60
	DEFAULT_FACILITATOR_URL = "https://x402.org/facilitator"

	// HTTP headers
	HEADER_PAYMENT          = "X-Payment"
	HEADER_PAYMENT_RESPONSE = "X-Payment-Response"
	HEADER_CONTENT_TYPE     = "Content-Type"

	// Content types
	CONTENT_TYPE_JSON = "application/json"
	CONTENT_TYPE_TEXT = "text/plain"

	// Fiber locals keys (framework-specific - must be strings for Fiber)
	// Used by Fiber's c.Locals() which requires string keys
	LOCALS_KEY_PAYMENT = "paywall:payment_info"

	// Starknet networks (CAIP-2 identifiers)
	NETWORK_STARKNET_MAINNET = "starknet:SN_MAIN"
	NETWORK_STARKNET_SEPOLIA = "starknet:SN_SEPOLIA"
	NETWORK_STARKNET_PREFIX  = "starknet:"

	// Starknet chain ids (shortstring values used in the SNIP-12 domain)
	CHAIN_ID_STARKNET_MAINNET = "SN_MAIN"
	CHAIN_ID_STARKNET_SEPOLIA = "SN_SEPOLIA"

	// SNIP-12 typed data
	SNIP12_DOMAIN_NAME    = "x402"
	SNIP12_DOMAIN_VERSION = "1"
	SNIP12_REVISION       = "1"
	SNIP12_MESSAGE_PREFIX = "StarkNet Message"
	SNIP12_PRIMARY_TYPE   = "OutsideExecution"
	SNIP12_TRANSFER_ENTRY = "transfer"
	SNIP12_CALLER_ANY     = "0x414e595f43414c4c4552" // shortstring "ANY_CALLER"

	// Facilitator endpoints
	FACILITATOR_PATH_VERIFY = "/verify"
	FACILITATOR_PATH_SETTLE = "/settle"

	// Repository keys
	REPO_KEY_PREFIX    = "paywall"
	REPO_KEY_SEPARATOR = ":"
	REPO_KEY_RECEIPT   = "receipt"

	// Replay guard / receipt cache defaults
	DEFAULT_REPLAY_CACHE_SIZE  = 4096
	DEFAULT_RECEIPT_CACHE_SIZE = 1024

	// HTTP status messages
	HTTP_MSG_OK               = "OK"
	HTTP_MSG_PAYMENT_REQUIRED = "Payment Required"
	HTTP_MSG_BAD_REQUEST      = "Bad Request"
	HTTP_MSG_NOT_FOUND        = "Not Found"
	HTTP_MSG_INTERNAL_ERROR   = "Internal Server Error"

	// Error messages (user-facing)
	ERROR_PAYMENT_REQUIRED            = "payment required"
	ERROR_MALFORMED_PAYMENT_HEADER    = "malformed payment header"
	ERROR_PAYMENT_VERIFICATION_FAILED = "payment verification failed"
	ERROR_PAYMENT_SETTLEMENT_FAILED   = "payment settlement failed"
	ERROR_PAYMENT_REPLAYED            = "payment replayed"
	ERROR_UNSUPPORTED_SCHEME          = "unsupported payment scheme"
	ERROR_UNSUPPORTED_NETWORK         = "unsupported payment network"
	ERROR_FACILITATOR_UNREACHABLE     = "facilitator unreachable"
	ERROR_RECEIPT_NOT_FOUND           = "receipt not found"
	ERROR_INVALID_ROUTE_PATTERN       = "invalid route pattern"
	ERROR_INVALID_PRICE               = "invalid price"
	ERROR_INVALID_ADDRESS             = "invalid starknet address"
	ERROR_AMOUNT_EXCEEDS_LIMIT        = "amount exceeds signer limit"
	ERROR_NO_MATCHING_TOKEN           = "no matching token for asset"
	ERROR_FRAMEWORK_REQUIRED          = "HTTP framework is required"
	ERROR_PAY_TO_REQUIRED             = "pay-to address is required"
	ERROR_ROUTES_REQUIRED             = "at least one protected route is required"
	ERROR_FACILITATOR_REQUIRED        = "facilitator client is required"

	// Log field names (for structured logging)
	LOG_FIELD_PAYMENT_ID  = "payment_id"
	LOG_FIELD_PAYER       = "payer"
	LOG_FIELD_NETWORK     = "network"
	LOG_FIELD_SCHEME      = "scheme"
	LOG_FIELD_AMOUNT      = "amount"
	LOG_FIELD_ASSET       = "asset"
	LOG_FIELD_RESOURCE    = "resource"
	LOG_FIELD_TRANSACTION = "transaction"
	LOG_FIELD_PATH        = "path"
	LOG_FIELD_METHOD      = "method"
	LOG_FIELD_STATUS_CODE = "status_code"
	LOG_FIELD_ERROR       = "error"

	// Response JSON keys
	RESPONSE_KEY_ERROR   = "error"
	RESPONSE_KEY_ACCEPTS = "accepts"
	RESPONSE_KEY_VERSION = "x402Version"

	// Class names for logging (service/component identification)
	CLASS_PAYWALL_MANAGER    = "PaywallManager"
	CLASS_PAYMENT_SERVICE    = "PaymentService"
	CLASS_FACILITATOR_CLIENT = "FacilitatorClient"
	CLASS_MIDDLEWARE         = "Middleware"
	CLASS_REPOSITORY         = "ReceiptRepository"
	CLASS_STARKNET_SIGNER    = "StarknetSigner"

	// API endpoint paths (optional receipt routes)
	PATH_RECEIPTS    = "/paywall/receipts"
	PATH_RECEIPTS_ID = "/paywall/receipts/:id"
	PATH_VERSION     = "/paywall/version"

	// Query parameters
	QUERY_PARAM_LIMIT  = "limit"
	QUERY_PARAM_OFFSET = "offset"

	// Default query values
	DEFAULT_QUERY_LIMIT  = 20
	DEFAULT_QUERY_OFFSET = 0

	// Operation identifiers (for tracing/logging/metrics)
	OPERATION_BUILD_REQUIREMENTS = "build_requirements"
	OPERATION_DECODE_PAYMENT     = "decode_payment"
	OPERATION_VERIFY_PAYMENT     = "verify_payment"
	OPERATION_SETTLE_PAYMENT     = "settle_payment"
	OPERATION_RECORD_RECEIPT     = "record_receipt"
	OPERATION_SIGN_PAYMENT       = "sign_payment"

	// Framework identifiers
	FRAMEWORK_FIBER  = "fiber"
	FRAMEWORK_MUX    = "mux"
	FRAMEWORK_STDLIB = "stdlib"

	// Validation constants
	MIN_PRICE_DIGITS      = 1
	MAX_PRICE_DIGITS      = 38 // fits well inside a felt
	MAX_DESCRIPTION_LEN   = 1024
	MAX_ROUTE_PATTERN_LEN = 512
	MAX_PAYMENT_HEADER_B  = 16384 // 16KB cap on the base64 payment header

	// Route pattern tokens
	ROUTE_WILDCARD_ALL    = "*"
	ROUTE_WILDCARD_SUFFIX = "/*"
	ROUTE_PARAM_PREFIX    = ":"
)

// contextKey is an unexported type for context keys to prevent collisions.
// Using an unexported type ensures only this package can create context keys,
// preventing other middleware from accidentally overwriting our values.
type contextKey string

// Context keys for stdlib context.Context (type-safe to prevent collisions)
var (
	contextKeyPaymentInfo contextKey = "paywall:payment_info"
)
