package shipping

import (
	"context"
	"fmt"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// ConfigLoader supplies the configurable zone model.
type ConfigLoader interface {
	LoadShippingConfig(ctx context.Context) (*domain.ShippingConfig, error)
}

// ZoneStrategy prices ice cream from admin-managed zones, state restrictions,
// heat surcharges and packaging fees. It handles every request it sees.
type ZoneStrategy struct {
	loader ConfigLoader
}

// NewZoneStrategy creates a zone strategy backed by loader.
func NewZoneStrategy(loader ConfigLoader) *ZoneStrategy {
	return &ZoneStrategy{loader: loader}
}

// Name implements Strategy.
func (s *ZoneStrategy) Name() string { return "zone" }

// Quote implements Strategy.
func (s *ZoneStrategy) Quote(ctx context.Context, req Request) (domain.ShippingBreakdown, bool, error) {
	cfg, err := s.loader.LoadShippingConfig(ctx)
	if err != nil {
		return domain.ShippingBreakdown{}, false, ErrConfigUnavailable(err)
	}
	return QuoteZones(cfg, req), true, nil
}

// QuoteZones applies the zone model to a request containing ice cream.
func QuoteZones(cfg *domain.ShippingConfig, req Request) domain.ShippingBreakdown {
	for _, r := range cfg.StateRestrictions {
		if r.StateCode == req.State {
			return domain.Blocked(fmt.Sprintf("Shipping to %s is not available.", req.State))
		}
	}

	zone := ResolveZone(cfg.Zones, req.State)
	if zone == nil {
		return domain.Blocked(fmt.Sprintf("No shipping available for state %s.", req.State))
	}

	currency := zone.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	b := domain.ShippingBreakdown{
		Allowed:  true,
		ZoneID:   zone.ID,
		ZoneName: zone.Name,
		Subtotal: zone.BasePriceCents * req.IceCreamPackages,
		MerchFee: merchFee(req),
		Currency: currency,
	}

	if rule := pickHeatRule(cfg.HeatSurchargeRules, zone.ID, req.HasFrozen); rule != nil {
		b.HeatSurcharge = rule.SurchargeCents
	}

	if req.HasFrozen {
		if fee := pickPackagingFee(cfg.PackagingFees, domain.PackagingIcePack, zone.ID); fee != nil {
			b.IcePackFee = fee.FeeCents
		}
		if fee := pickPackagingFee(cfg.PackagingFees, domain.PackagingInsulated, zone.ID); fee != nil {
			b.InsulatedPackagingFee = fee.FeeCents
		}
	}

	b.Total = b.Subtotal + b.HeatSurcharge + b.IcePackFee + b.InsulatedPackagingFee + b.MerchFee
	return b
}

// ResolveZone returns the first zone listing state (case-insensitively), else
// the first default zone.
func ResolveZone(zones []domain.ShippingZone, state string) *domain.ShippingZone {
	for i := range zones {
		for _, s := range zones[i].States {
			if strings.EqualFold(s, state) {
				return &zones[i]
			}
		}
	}
	for i := range zones {
		if zones[i].IsDefault {
			return &zones[i]
		}
	}
	return nil
}

// pickHeatRule prefers a rule scoped to the zone over a global one.
// Frozen-only rules are skipped when nothing frozen ships.
func pickHeatRule(rules []domain.HeatSurchargeRule, zoneID string, hasFrozen bool) *domain.HeatSurchargeRule {
	var global *domain.HeatSurchargeRule
	for i := range rules {
		r := &rules[i]
		if r.AppliesToFrozenOnly && !hasFrozen {
			continue
		}
		switch {
		case r.ZoneID != nil && *r.ZoneID == zoneID:
			return r
		case r.ZoneID == nil && global == nil:
			global = r
		}
	}
	return global
}

// pickPackagingFee returns at most one fee of kind, zone-scoped first.
func pickPackagingFee(fees []domain.PackagingFee, kind domain.PackagingKind, zoneID string) *domain.PackagingFee {
	var global *domain.PackagingFee
	for i := range fees {
		f := &fees[i]
		if f.Kind != kind {
			continue
		}
		switch {
		case f.ZoneID != nil && *f.ZoneID == zoneID:
			return f
		case f.ZoneID == nil && global == nil:
			global = f
		}
	}
	return global
}
