// Package cart turns untrusted client cart lines into priced line items
// using the authoritative catalog.
package cart

import (
	"errors"
	"math"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// ErrEmpty is returned when no positive-quantity line survives validation.
var ErrEmpty = &domain.Error{Code: domain.EINVALID, Op: "cart.validate", Message: "Cart is empty"}

// Validate matches each input line against the catalog by variation id or
// item id, preferring the line's explicit variation id. An item id resolves
// to the item's last listed variation. Lines with a non-positive or
// non-finite quantity are dropped; a quantity above MaxInt32 rejects the cart,
// as does any unknown id. Price, currency, frozen and merch fields always
// come from the catalog.
func Validate(lines []domain.CartLineInput, catalog []domain.CatalogLine) ([]domain.CartLineItem, error) {
	byVariation := make(map[string]domain.CatalogLine, len(catalog))
	byItem := make(map[string]domain.CatalogLine, len(catalog))
	for _, c := range catalog {
		if c.VariationID != "" {
			byVariation[c.VariationID] = c
		}
		if c.ID != "" {
			byItem[c.ID] = c
		}
	}
	lookup := func(id string) (domain.CatalogLine, bool) {
		if c, ok := byVariation[id]; ok {
			return c, true
		}
		c, ok := byItem[id]
		return c, ok
	}

	items := make([]domain.CartLineItem, 0, len(lines))
	for _, line := range lines {
		qty, ok, err := quantity(line.Quantity)
		if err != nil {
			return nil, domain.Errorf(domain.EINVALID, "cart.validate", "Invalid quantity for item: %s", line.CatalogObjectID)
		}
		if !ok {
			continue
		}

		key := line.VariationID
		if key == "" {
			key = line.CatalogObjectID
		}
		c, found := lookup(key)
		if !found {
			c, found = lookup(line.CatalogObjectID)
		}
		if !found {
			return nil, domain.Errorf(domain.EINVALID, "cart.validate", "Invalid or unavailable item: %s", line.CatalogObjectID)
		}

		currency := c.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}

		items = append(items, domain.CartLineItem{
			CatalogObjectID: c.ID,
			VariationID:     c.VariationID,
			Name:            c.Name,
			Quantity:        qty,
			BasePriceAmount: c.PriceAmount,
			Currency:        currency,
			IsFrozen:        c.IsFrozen,
			IsMerch:         domain.IsMerchProduct(c.Name),
			Note:            line.Note,
		})
	}

	if len(items) == 0 {
		return nil, ErrEmpty
	}
	return items, nil
}

var errQuantityRange = errors.New("quantity out of range")

// quantity floors q. ok is false for lines that should be dropped.
func quantity(q float64) (int64, bool, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false, nil
	}
	n := math.Floor(q)
	if n < 1 {
		return 0, false, nil
	}
	if n > math.MaxInt32 {
		return 0, false, errQuantityRange
	}
	return int64(n), true, nil
}

// ShippingItems projects validated lines onto what the shipping engine needs.
func ShippingItems(items []domain.CartLineItem) []domain.ShippingItem {
	out := make([]domain.ShippingItem, len(items))
	for i, it := range items {
		out[i] = domain.ShippingItem{
			CatalogObjectID: it.CatalogObjectID,
			Quantity:        it.Quantity,
			IsFrozen:        it.IsFrozen,
			IsMerch:         it.IsMerch,
		}
	}
	return out
}

// Subtotal sums every line total.
func Subtotal(items []domain.CartLineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
