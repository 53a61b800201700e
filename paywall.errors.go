// Package paywall provides x402 payment middleware for Go web applications.
//
// This file defines all error types and sentinel errors using go-cuserr.
// Integrated with go-cuserr v0.3.0 for consistent error handling across vAudience.AI services.
package paywall

import (
	"errors"
	"fmt"

	"github.com/itsatony/go-cuserr"
)

// Sentinel errors using go-cuserr
// These are the base error types that can be wrapped with context
var (
	// ErrNotFound indicates a resource was not found (404, NOT_FOUND)
	ErrNotFound = cuserr.ErrNotFound

	// ErrInvalidInput indicates invalid input data (400, INVALID_ARGUMENT)
	ErrInvalidInput = errors.New("invalid input")

	// ErrPaymentRequired indicates a missing or unacceptable payment (402)
	ErrPaymentRequired = errors.New(ERROR_PAYMENT_REQUIRED)

	// ErrInternal indicates an internal error (500, INTERNAL)
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates a timeout occurred (408, DEADLINE_EXCEEDED)
	ErrTimeout = errors.New("timeout")

	// ErrExternal indicates an external service failure (502, UNAVAILABLE)
	ErrExternal = errors.New("external service error")

	// ErrInvalidConfiguration indicates configuration error
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Domain-specific sentinel errors
var (
	// Payment errors
	ErrMalformedPaymentHeader = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_MALFORMED_PAYMENT_HEADER)
	ErrVerificationFailed     = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_PAYMENT_VERIFICATION_FAILED)
	ErrSettlementFailed       = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_PAYMENT_SETTLEMENT_FAILED)
	ErrPaymentReplayed        = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_PAYMENT_REPLAYED)
	ErrUnsupportedScheme      = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_UNSUPPORTED_SCHEME)
	ErrUnsupportedNetwork     = fmt.Errorf("%w: %s", ErrPaymentRequired, ERROR_UNSUPPORTED_NETWORK)

	// Facilitator errors
	ErrFacilitatorUnreachable = fmt.Errorf("%w: %s", ErrExternal, ERROR_FACILITATOR_UNREACHABLE)

	// Receipt errors
	ErrReceiptNotFound = fmt.Errorf("%w: %s", ErrNotFound, ERROR_RECEIPT_NOT_FOUND)

	// Signer errors
	ErrAmountExceedsLimit = fmt.Errorf("%w: %s", ErrInvalidInput, ERROR_AMOUNT_EXCEEDS_LIMIT)
	ErrNoMatchingToken    = fmt.Errorf("%w: %s", ErrInvalidInput, ERROR_NO_MATCHING_TOKEN)

	// Configuration errors
	ErrFrameworkRequired   = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_FRAMEWORK_REQUIRED)
	ErrPayToRequired       = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_PAY_TO_REQUIRED)
	ErrRoutesRequired      = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_ROUTES_REQUIRED)
	ErrFacilitatorRequired = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_FACILITATOR_REQUIRED)
	ErrInvalidRoutePattern = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_INVALID_ROUTE_PATTERN)
	ErrInvalidPrice        = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_INVALID_PRICE)
	ErrInvalidAddress      = fmt.Errorf("%w: %s", ErrInvalidConfiguration, ERROR_INVALID_ADDRESS)
)

// Error checking helpers (compatible with errors.Is)
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsPaymentRequiredError(err error) bool {
	return errors.Is(err, ErrPaymentRequired)
}

func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsExternalError(err error) bool {
	return errors.Is(err, ErrExternal)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// NewValidationError creates a validation error with field context using go-cuserr
func NewValidationError(field, message string) error {
	return cuserr.NewValidationError(field, message)
}

// NewNotFoundError creates a not found error with resource context using go-cuserr
func NewNotFoundError(resource, identifier string) error {
	return cuserr.NewNotFoundError(resource, identifier)
}

// NewInternalError creates an internal error with component context using go-cuserr
func NewInternalError(component string, cause error) error {
	return cuserr.NewInternalError(component, cause)
}

// NewTimeoutError creates a timeout error with operation context using go-cuserr
func NewTimeoutError(operation string, cause error) error {
	return cuserr.NewTimeoutError(operation, cause)
}

// NewExternalError creates an external service error with context using go-cuserr
func NewExternalError(service, operation string, cause error) error {
	return cuserr.NewExternalError(service, operation, cause)
}

// WrapError wraps an error with additional context using go-cuserr
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return cuserr.ErrorWithContext(err, message)
}

// WrapErrorf wraps an error with formatted context using go-cuserr
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return cuserr.ErrorWithContext(err, message)
}

// ErrorToHTTPStatus maps errors to HTTP status codes
// This is compatible with go-cuserr pattern
func ErrorToHTTPStatus(err error) int {
	if err == nil {
		return 200
	}

	switch {
	case errors.Is(err, ErrPaymentRequired):
		return 402
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrInvalidInput):
		return 400
	case errors.Is(err, ErrTimeout):
		return 408
	case errors.Is(err, ErrExternal):
		return 502
	case errors.Is(err, ErrInternal):
		return 500
	default:
		return 500
	}
}

// ErrorToMessage extracts user-safe error message
func ErrorToMessage(err error) string {
	if err == nil {
		return HTTP_MSG_OK
	}

	// Return the error message without internal details
	return err.Error()
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Code    int                    `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse creates a standardized error response
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	return &ErrorResponse{
		Error:   ErrorToMessage(err),
		Message: ErrorToMessage(err),
		Code:    ErrorToHTTPStatus(err),
	}
}
