package shipping

import (
	"context"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// FlatRateStrategy prices ice cream with a fixed per-package rate by state.
// States missing from the table are left to the next strategy.
type FlatRateStrategy struct {
	rates map[string]int64
}

// DefaultStateRates are the per-package ice cream rates in cents.
var DefaultStateRates = buildRates(map[int64][]string{
	1000: {"PA"},
	1500: {"DE", "DC", "MD", "NJ", "OH"},
	2500: {"WV", "CT", "VA"},
	3000: {"IL", "IN", "KY", "MA", "MI", "NH", "NY", "RI", "TN"},
	3500: {"NC", "SC", "VT", "ME"},
	4000: {"AL", "GA", "IA", "AR", "FL", "KS", "LA", "MO", "NE"},
	4500: {"MS", "MN", "OK", "SD", "WI"},
	5500: {"TX"},
	6500: {"AZ", "CA", "CO", "ID", "MT", "NV", "NM", "ND", "OR", "UT", "WA", "WY"},
})

func buildRates(tiers map[int64][]string) map[string]int64 {
	rates := make(map[string]int64)
	for cents, states := range tiers {
		for _, s := range states {
			rates[s] = cents
		}
	}
	return rates
}

// NewFlatRateStrategy creates a strategy over a state → cents table.
// A nil table uses DefaultStateRates.
func NewFlatRateStrategy(rates map[string]int64) *FlatRateStrategy {
	if rates == nil {
		rates = DefaultStateRates
	}
	return &FlatRateStrategy{rates: rates}
}

// Name implements Strategy.
func (s *FlatRateStrategy) Name() string { return "flat_rate" }

// Rate returns the per-package rate for a normalized state.
func (s *FlatRateStrategy) Rate(state string) (int64, bool) {
	cents, ok := s.rates[state]
	return cents, ok
}

// Quote implements Strategy.
func (s *FlatRateStrategy) Quote(_ context.Context, req Request) (domain.ShippingBreakdown, bool, error) {
	rate, ok := s.rates[req.State]
	if !ok {
		return domain.ShippingBreakdown{}, false, nil
	}

	subtotal := rate * req.IceCreamPackages
	fee := merchFee(req)
	return domain.ShippingBreakdown{
		Allowed:  true,
		Subtotal: subtotal,
		MerchFee: fee,
		Total:    subtotal + fee,
		Currency: domain.DefaultCurrency,
	}, true, nil
}
