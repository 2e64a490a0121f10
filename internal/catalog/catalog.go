// Package catalog is the storefront's view of the payments/catalog provider:
// item listing, order creation, payment capture and catalog item management.
package catalog

import (
	"context"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// Provider is the catalog and payments provider used by checkout and admin.
type Provider interface {
	// ListCatalog returns every priced item variation. Never cached.
	ListCatalog(ctx context.Context) ([]domain.CatalogLine, error)

	// CreateOrder creates a provider order. A rejected order is reported
	// through OrderResult.Errors with an empty OrderID, not as an error.
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)

	// CreatePayment charges a tokenized payment source against an order.
	// Declines are reported through PaymentResult, not as an error.
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)

	// CreateItem creates an item with a single "Default" variation.
	CreateItem(ctx context.Context, in ItemInput) (*CreatedItem, error)

	// DeleteItem deletes an item and its variation.
	DeleteItem(ctx context.Context, itemID, variationID string) error
}

// OrderLine is one line item of a provider order.
type OrderLine struct {
	UID            string
	Name           string
	Quantity       int64
	VariationID    string
	BasePriceCents int64
	Currency       string
	Note           string
}

// ServiceCharge is an order-level charge such as shipping.
type ServiceCharge struct {
	UID              string
	Name             string
	AmountCents      int64
	Currency         string
	CalculationPhase string
}

// CalculationPhaseSubtotal applies a service charge before taxes.
const CalculationPhaseSubtotal = "SUBTOTAL_PHASE"

// OrderRequest creates a provider order.
type OrderRequest struct {
	IdempotencyKey string
	LineItems      []OrderLine
	ServiceCharges []ServiceCharge
}

// OrderResult is the provider's answer to CreateOrder.
type OrderResult struct {
	OrderID    string
	TotalCents int64
	Errors     []ErrorDetail
}

// Address is an optional shipping address attached to a payment.
type Address struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	Locality     string `json:"locality"`
	Region       string `json:"administrativeDistrictLevel1"`
	PostalCode   string `json:"postalCode"`
}

// Block renders the address as up to three lines for notifications.
func (a *Address) Block() string {
	if a == nil {
		return ""
	}
	lines := make([]string, 0, 3)
	if name := joinNonEmpty(" ", a.FirstName, a.LastName); name != "" {
		lines = append(lines, name)
	}
	if a.AddressLine1 != "" {
		lines = append(lines, a.AddressLine1)
	}
	if place := joinNonEmpty(", ", a.Locality, a.Region, a.PostalCode); place != "" {
		lines = append(lines, place)
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// PaymentRequest charges a payment source.
type PaymentRequest struct {
	IdempotencyKey  string
	SourceID        string
	AmountCents     int64
	Currency        string
	OrderID         string
	BuyerEmail      string
	ShippingAddress *Address
}

// Payment statuses that mean the charge went through.
const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusApproved  = "APPROVED"
)

// PaymentResult is the provider's answer to CreatePayment.
type PaymentResult struct {
	PaymentID string
	Status    string
	Errors    []ErrorDetail
}

// Succeeded reports whether the payment completed or was approved.
func (p *PaymentResult) Succeeded() bool {
	return p != nil && (p.Status == PaymentStatusCompleted || p.Status == PaymentStatusApproved)
}

// ItemInput creates a catalog item.
type ItemInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	PriceCents  int64  `json:"priceCents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Description string `json:"description" validate:"max=4096"`
}

// CreatedItem identifies a newly created item and its variation.
type CreatedItem struct {
	ItemID      string `json:"itemId"`
	VariationID string `json:"variationId"`
}
