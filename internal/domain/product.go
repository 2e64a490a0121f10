package domain

import (
	"context"
	"strings"
	"time"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// ProductType is the storefront tab a catalog item belongs to.
type ProductType string

const (
	ProductTypeIceCream    ProductType = "ice_cream"
	ProductTypeMerchandise ProductType = "merchandise"
	ProductTypeGiftCard    ProductType = "gift_card"
)

// ParseProductType normalizes a provider attribute value.
// Unknown or empty values fall back to ice cream.
func ParseProductType(value string) ProductType {
	v := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	switch ProductType(v) {
	case ProductTypeIceCream, ProductTypeMerchandise, ProductTypeGiftCard:
		return ProductType(v)
	default:
		return ProductTypeIceCream
	}
}

// DefaultCurrency is used whenever the provider omits one.
const DefaultCurrency = "USD"

// CatalogLine is an authoritative item/variation snapshot from the catalog provider.
// Prices are integer minor units.
type CatalogLine struct {
	ID          string      `json:"id"`
	VariationID string      `json:"variationId"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	PriceAmount int64       `json:"priceCents"`
	Currency    string      `json:"currency"`
	IsFrozen    bool        `json:"isFrozen"`
	ProductType ProductType `json:"productType"`
}

// CartLineInput is a client-submitted cart line. Nothing in it is trusted.
type CartLineInput struct {
	CatalogObjectID string  `json:"catalogObjectId"`
	Quantity        float64 `json:"quantity"`
	VariationID     string  `json:"variationId,omitempty"`
	Note            string  `json:"note,omitempty"`
}

// CartLineItem is a validated cart line. Price, currency, frozen and merch
// fields always come from the matching CatalogLine.
type CartLineItem struct {
	CatalogObjectID string
	VariationID     string
	Name            string
	Quantity        int64
	BasePriceAmount int64
	Currency        string
	IsFrozen        bool
	IsMerch         bool
	Note            string
}

// LineTotal returns price × quantity.
func (l CartLineItem) LineTotal() int64 {
	return l.BasePriceAmount * l.Quantity
}

// merchNameFragments are the known merchandise product names.
var merchNameFragments = []string{
	"standard playing cards",
	"glass water bottle",
	"memory card game",
	"green kids tee",
	"tan kids tee",
	"pink kids tee",
}

// IsMerchProduct classifies a product as merchandise by name.
// A name matches when it contains a known fragment or is itself part of one.
func IsMerchProduct(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, key := range merchNameFragments {
		if strings.Contains(n, key) || strings.Contains(key, n) {
			return true
		}
	}
	return false
}

// =============================================================================
// STORE PRODUCT SETTINGS
// =============================================================================

// StoreProductSetting holds storefront merchandising data for one variation.
type StoreProductSetting struct {
	VariationID             string    `json:"variation_id"`
	CatalogItemID           string    `json:"catalog_item_id"`
	DisplayOrder            int       `json:"display_order"`
	IsOutOfStock            bool      `json:"is_out_of_stock"`
	CustomImageURL          *string   `json:"custom_image_url"`
	Hidden                  bool      `json:"hidden"`
	Featured                bool      `json:"featured"`
	Seasonal                bool      `json:"seasonal"`
	ProductTypeOverride     *string   `json:"product_type_override"`
	PriceOverrideCents      *int64    `json:"price_override_cents"`
	LongDescriptionOverride *string   `json:"long_description_override"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// StoreProductSettingPatch carries only the fields an admin changed.
type StoreProductSettingPatch struct {
	DisplayOrder            *int    `json:"display_order"`
	IsOutOfStock            *bool   `json:"is_out_of_stock"`
	CustomImageURL          *string `json:"custom_image_url"`
	Hidden                  *bool   `json:"hidden"`
	Featured                *bool   `json:"featured"`
	Seasonal                *bool   `json:"seasonal"`
	ProductTypeOverride     *string `json:"product_type_override" validate:"omitempty,oneof=ice_cream merchandise gift_card"`
	PriceOverrideCents      *int64  `json:"price_override_cents" validate:"omitempty,gte=0"`
	LongDescriptionOverride *string `json:"long_description_override"`
}

// ProductSettingsStore persists store product settings keyed by variation id.
type ProductSettingsStore interface {
	ListProductSettings(ctx context.Context) (map[string]StoreProductSetting, error)
	UpsertProductSetting(ctx context.Context, variationID, catalogItemID string, patch StoreProductSettingPatch) (*StoreProductSetting, error)
	DeleteProductSetting(ctx context.Context, variationID string) error
}
