package service

import (
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// Checkout errors. Messages are shown to the buyer verbatim.
var (
	ErrMissingCheckoutFields = domain.Errorf(domain.EINVALID, "checkout", "Missing idempotencyKey, cart, shippingState, email, or paymentNonce")
	ErrPreviousAttemptFailed = domain.Errorf(domain.EINVALID, "checkout", "A previous attempt for this order failed. Please try again with a new checkout.")
	ErrCheckoutNotConfigured = domain.Errorf(domain.EUNAVAILABLE, "checkout", "Checkout is not configured")
	ErrShippingNotAvailable  = domain.Errorf(domain.EINVALID, "checkout", "Shipping not available")
)

// Messages used when the provider gives no detail.
const (
	msgCreateOrderFailed   = "Create order failed"
	msgPaymentNotCompleted = "Payment was not completed"
)

// Shipping admin errors.
var (
	ErrIDRequired     = domain.Errorf(domain.EINVALID, "shipping.admin", "id required")
	ErrUnknownAction  = domain.Errorf(domain.EINVALID, "shipping.admin", "Unknown action")
	ErrInvalidKind    = domain.Errorf(domain.EINVALID, "shipping.admin", "kind must be ice_pack or insulated")
	ErrInvalidState   = domain.Errorf(domain.EINVALID, "shipping.admin", "state_code must be a 2-letter state")
	ErrAdminRequired  = domain.Errorf(domain.EUNAUTHORIZED, "admin", "Unauthorized")
	ErrWriteForbidden = domain.Errorf(domain.EFORBIDDEN, "admin", "Forbidden")
)

// Catalog admin errors.
var (
	ErrItemIDRequired      = domain.Errorf(domain.EINVALID, "catalog.admin", "itemId required")
	ErrVariationIDRequired = domain.Errorf(domain.EINVALID, "catalog.admin", "variationId required")
)

// Webhook errors.
var (
	ErrWebhookMisconfigured = domain.Errorf(domain.EINTERNAL, "webhook", "Server misconfiguration")
	ErrInvalidSignature     = domain.Errorf(domain.EFORBIDDEN, "webhook", "Invalid signature")
	ErrWebhookProcessing    = domain.Errorf(domain.EINTERNAL, "webhook", "Processing failed")
)
