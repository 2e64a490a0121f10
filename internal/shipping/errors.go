package shipping

import "fmt"

// ============================================================================
// SHIPPING ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInternal = "internal"
	codeInvalid  = "invalid"
)

// ============================================================================
// SHIPPING ERROR TYPE
// ============================================================================

// ShippingError represents a shipping-specific error with a code and message.
// Policy rejections are not errors; they are reported as a not-allowed breakdown.
type ShippingError struct {
	Code    string
	Message string
	Err     error
}

func (e *ShippingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ShippingError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ShippingError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ShippingError) ErrorMessage() string {
	return e.Message
}

// newShippingError creates a new shipping error.
func newShippingError(code, message string) *ShippingError {
	return &ShippingError{Code: code, Message: message}
}

// ============================================================================
// SHIPPING DOMAIN ERRORS
// ============================================================================

var (
	// ErrStateRequired is returned when no destination state is given.
	ErrStateRequired = newShippingError(codeInvalid, "Destination state is required")

	// ErrNoStrategies is returned when an engine is built without strategies.
	ErrNoStrategies = newShippingError(codeInternal, "Shipping engine has no rate strategies")
)

// ErrConfigUnavailable wraps a failure to load the zone configuration.
func ErrConfigUnavailable(err error) error {
	return &ShippingError{
		Code:    codeInternal,
		Message: "Shipping configuration unavailable",
		Err:     err,
	}
}
