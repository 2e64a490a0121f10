package domain

import (
	"context"
	"time"
)

// ShippingItem is the view of a cart line the shipping engine needs.
type ShippingItem struct {
	CatalogObjectID string
	Quantity        int64
	IsFrozen        bool
	IsMerch         bool
}

// ShippingBreakdown is a priced, policy-checked shipping quote.
// All amounts are integer minor units. When Allowed is false every amount is 0.
// MerchFee carries the merch flat fee of mixed carts; it never appears in Subtotal.
type ShippingBreakdown struct {
	Allowed               bool   `json:"allowed"`
	BlockedReason         string `json:"blockedReason,omitempty"`
	ZoneID                string `json:"zoneId,omitempty"`
	ZoneName              string `json:"zoneName,omitempty"`
	Subtotal              int64  `json:"subtotal"`
	HeatSurcharge         int64  `json:"heatSurcharge"`
	IcePackFee            int64  `json:"icePackFee"`
	InsulatedPackagingFee int64  `json:"insulatedPackagingFee"`
	MerchFee              int64  `json:"merchFee"`
	Total                 int64  `json:"total"`
	Currency              string `json:"currency"`
}

// Blocked returns a not-allowed breakdown with zeroed amounts.
func Blocked(reason string) ShippingBreakdown {
	return ShippingBreakdown{
		Allowed:       false,
		BlockedReason: reason,
		Currency:      DefaultCurrency,
	}
}

// =============================================================================
// SHIPPING CONFIGURATION (zone model)
// =============================================================================

// ShippingZone groups destination states sharing a base per-package price.
type ShippingZone struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	States         []string  `json:"states"`
	BasePriceCents int64     `json:"base_price_cents"`
	Currency       string    `json:"currency"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StateRestriction blocks shipping to a state entirely.
type StateRestriction struct {
	ID        string    `json:"id"`
	StateCode string    `json:"state_code"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// HeatSurchargeRule adds a fee for temperature-sensitive cargo.
// A nil ZoneID applies to every zone.
type HeatSurchargeRule struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	ZoneID              *string   `json:"zone_id"`
	SurchargeCents      int64     `json:"surcharge_cents"`
	AppliesToFrozenOnly bool      `json:"applies_to_frozen_only"`
	CreatedAt           time.Time `json:"created_at"`
}

// PackagingKind distinguishes packaging fee types.
type PackagingKind string

const (
	PackagingIcePack   PackagingKind = "ice_pack"
	PackagingInsulated PackagingKind = "insulated"
)

// PackagingFee is charged once per shipment of frozen cargo.
type PackagingFee struct {
	ID        string        `json:"id"`
	Kind      PackagingKind `json:"kind"`
	ZoneID    *string       `json:"zone_id"`
	FeeCents  int64         `json:"fee_cents"`
	CreatedAt time.Time     `json:"created_at"`
}

// ShippingConfig is the full configurable zone model.
type ShippingConfig struct {
	Zones              []ShippingZone      `json:"zones"`
	StateRestrictions  []StateRestriction  `json:"stateRestrictions"`
	HeatSurchargeRules []HeatSurchargeRule `json:"heatSurchargeRules"`
	PackagingFees      []PackagingFee      `json:"packagingFees"`
}

// ZoneInput creates or partially updates a zone. Nil fields are left unchanged on update.
type ZoneInput struct {
	Name           *string   `json:"name"`
	States         *[]string `json:"states"`
	BasePriceCents *int64    `json:"base_price_cents" validate:"omitempty,gte=0"`
	Currency       *string   `json:"currency" validate:"omitempty,len=3"`
	IsDefault      *bool     `json:"is_default"`
}

// HeatSurchargeInput creates a heat surcharge rule.
type HeatSurchargeInput struct {
	Name                *string `json:"name"`
	ZoneID              *string `json:"zone_id"`
	SurchargeCents      int64   `json:"surcharge_cents" validate:"gte=0"`
	AppliesToFrozenOnly *bool   `json:"applies_to_frozen_only"`
}

// PackagingFeeInput creates a packaging fee.
type PackagingFeeInput struct {
	Kind     PackagingKind `json:"kind"`
	ZoneID   *string       `json:"zone_id"`
	FeeCents int64         `json:"fee_cents" validate:"gte=0"`
}

// ShippingConfigStore persists the zone model.
type ShippingConfigStore interface {
	// LoadShippingConfig returns every zone (default zones first), restriction,
	// heat rule and packaging fee.
	LoadShippingConfig(ctx context.Context) (*ShippingConfig, error)

	CreateZone(ctx context.Context, in ZoneInput) (string, error)
	UpdateZone(ctx context.Context, id string, in ZoneInput) error
	DeleteZone(ctx context.Context, id string) error

	CreateStateRestriction(ctx context.Context, stateCode string, reason *string) (string, error)
	DeleteStateRestriction(ctx context.Context, id string) error

	CreateHeatSurcharge(ctx context.Context, in HeatSurchargeInput) (string, error)
	DeleteHeatSurcharge(ctx context.Context, id string) error

	CreatePackagingFee(ctx context.Context, in PackagingFeeInput) (string, error)
	DeletePackagingFee(ctx context.Context, id string) error
}
