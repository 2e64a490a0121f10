package catalog

import (
	"fmt"
	"strings"
)

// ============================================================================
// PROVIDER ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInternal    = "internal"
	codeInvalid     = "invalid"
	codeNotFound    = "not_found"
	codeUnavailable = "unavailable"
)

// ErrorDetail is one provider-reported error.
type ErrorDetail struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field,omitempty"`
}

// JoinDetails joins the detail text of errs with "; ".
func JoinDetails(errs []ErrorDetail) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Detail != "" {
			parts = append(parts, e.Detail)
		} else if e.Code != "" {
			parts = append(parts, e.Code)
		}
	}
	return strings.Join(parts, "; ")
}

// ============================================================================
// PROVIDER ERROR TYPE
// ============================================================================

// ProviderError represents a provider failure with a code and message.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
	Details    []ErrorDetail
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if d := JoinDetails(e.Details); d != "" {
		msg = fmt.Sprintf("%s: %s", msg, d)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ProviderError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ProviderError) ErrorMessage() string {
	if d := JoinDetails(e.Details); d != "" && e.Code == codeInvalid {
		return d
	}
	return e.Message
}

// ============================================================================
// PROVIDER DOMAIN ERRORS
// ============================================================================

var (
	// ErrNotConfigured is returned when no access token or location is set.
	ErrNotConfigured = &ProviderError{Code: codeInternal, Message: "Catalog provider is not configured"}

	// ErrItemNotCreated is returned when an upsert response carries no ids.
	ErrItemNotCreated = &ProviderError{Code: codeInternal, Message: "Provider did not return the new item or variation id"}
)

// errUnavailable wraps a transport failure or open circuit.
func errUnavailable(err error) error {
	return &ProviderError{Code: codeUnavailable, Message: "Catalog provider unavailable", Err: err}
}

// errStatus converts a non-2xx response into a ProviderError.
func errStatus(op string, status int, details []ErrorDetail) error {
	code := codeInternal
	switch {
	case status == 404:
		code = codeNotFound
	case status == 429 || status >= 500:
		code = codeUnavailable
	case status == 400 || status == 402 || status == 409 || status == 422:
		code = codeInvalid
	}
	return &ProviderError{
		Code:       code,
		Message:    fmt.Sprintf("Provider %s failed", op),
		StatusCode: status,
		Details:    details,
	}
}
