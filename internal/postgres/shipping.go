package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sourcegraph/conc/pool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// ShippingStore implements domain.ShippingConfigStore.
type ShippingStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure ShippingStore implements domain.ShippingConfigStore.
var _ domain.ShippingConfigStore = (*ShippingStore)(nil)

// NewShippingStore creates a new ShippingStore.
func NewShippingStore(p *pgxpool.Pool) *ShippingStore {
	return &ShippingStore{pool: p}
}

// LoadShippingConfig loads the four config tables concurrently.
func (s *ShippingStore) LoadShippingConfig(ctx context.Context) (*domain.ShippingConfig, error) {
	const op = "shipping_config.load"
	cfg := &domain.ShippingConfig{}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		cfg.Zones, err = s.listZones(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		cfg.StateRestrictions, err = s.listRestrictions(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		cfg.HeatSurchargeRules, err = s.listHeatRules(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		cfg.PackagingFees, err = s.listPackagingFees(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, domain.Internal(err, op, "failed to load shipping configuration")
	}

	return cfg, nil
}

func (s *ShippingStore) listZones(ctx context.Context) ([]domain.ShippingZone, error) {
	const q = `
SELECT id::text, name, states, base_price_cents, currency, is_default, created_at, updated_at
FROM shipping_zones
ORDER BY is_default DESC, created_at, id
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ShippingZone, error) {
		var z domain.ShippingZone
		err := row.Scan(&z.ID, &z.Name, &z.States, &z.BasePriceCents, &z.Currency, &z.IsDefault, &z.CreatedAt, &z.UpdatedAt)
		return z, err
	})
}

func (s *ShippingStore) listRestrictions(ctx context.Context) ([]domain.StateRestriction, error) {
	const q = `
SELECT id::text, state_code, reason, created_at
FROM state_restrictions
ORDER BY state_code
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StateRestriction, error) {
		var r domain.StateRestriction
		err := row.Scan(&r.ID, &r.StateCode, &r.Reason, &r.CreatedAt)
		return r, err
	})
}

func (s *ShippingStore) listHeatRules(ctx context.Context) ([]domain.HeatSurchargeRule, error) {
	const q = `
SELECT id::text, name, zone_id::text, surcharge_cents, applies_to_frozen_only, created_at
FROM heat_surcharge_rules
ORDER BY created_at, id
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.HeatSurchargeRule, error) {
		var r domain.HeatSurchargeRule
		err := row.Scan(&r.ID, &r.Name, &r.ZoneID, &r.SurchargeCents, &r.AppliesToFrozenOnly, &r.CreatedAt)
		return r, err
	})
}

func (s *ShippingStore) listPackagingFees(ctx context.Context) ([]domain.PackagingFee, error) {
	const q = `
SELECT id::text, kind, zone_id::text, fee_cents, created_at
FROM packaging_fees
ORDER BY created_at, id
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PackagingFee, error) {
		var f domain.PackagingFee
		err := row.Scan(&f.ID, &f.Kind, &f.ZoneID, &f.FeeCents, &f.CreatedAt)
		return f, err
	})
}

// =============================================================================
// ZONES
// =============================================================================

// CreateZone inserts a zone; nil fields take the column defaults.
func (s *ShippingStore) CreateZone(ctx context.Context, in domain.ZoneInput) (string, error) {
	const q = `
INSERT INTO shipping_zones (name, states, base_price_cents, currency, is_default)
VALUES (
    COALESCE($1::text, 'New Zone'),
    COALESCE($2::text[], '{}'),
    COALESCE($3::bigint, 0),
    COALESCE($4::text, 'USD'),
    COALESCE($5::boolean, FALSE)
)
RETURNING id::text
`
	var id string
	if err := s.pool.QueryRow(ctx, q, in.Name, statesArg(in.States), in.BasePriceCents, in.Currency, in.IsDefault).Scan(&id); err != nil {
		return "", mapWriteError(err, "shipping_zone.create", "shipping zone")
	}
	return id, nil
}

// UpdateZone applies the non-nil fields of in.
func (s *ShippingStore) UpdateZone(ctx context.Context, id string, in domain.ZoneInput) error {
	const q = `
UPDATE shipping_zones SET
    name             = COALESCE($2::text, name),
    states           = COALESCE($3::text[], states),
    base_price_cents = COALESCE($4::bigint, base_price_cents),
    currency         = COALESCE($5::text, currency),
    is_default       = COALESCE($6::boolean, is_default),
    updated_at       = NOW()
WHERE id = $1::uuid
`
	const op = "shipping_zone.update"
	tag, err := s.pool.Exec(ctx, q, id, in.Name, statesArg(in.States), in.BasePriceCents, in.Currency, in.IsDefault)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.NotFound(op, "shipping zone", id)
		}
		return mapWriteError(err, op, "shipping zone")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "shipping zone", id)
	}
	return nil
}

// DeleteZone removes a zone and its scoped rules.
func (s *ShippingStore) DeleteZone(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1::uuid`, id)
	return requireRow(tag, err, "shipping_zone.delete", "shipping zone", id)
}

// statesArg uppercases states; nil stays nil so COALESCE keeps the column.
func statesArg(states *[]string) []string {
	if states == nil {
		return nil
	}
	out := make([]string, 0, len(*states))
	for _, st := range *states {
		if st = strings.ToUpper(strings.TrimSpace(st)); st != "" {
			out = append(out, st)
		}
	}
	return out
}

// =============================================================================
// STATE RESTRICTIONS
// =============================================================================

// CreateStateRestriction blocks a state.
func (s *ShippingStore) CreateStateRestriction(ctx context.Context, stateCode string, reason *string) (string, error) {
	const q = `
INSERT INTO state_restrictions (state_code, reason)
VALUES ($1, $2)
RETURNING id::text
`
	var id string
	if err := s.pool.QueryRow(ctx, q, stateCode, reason).Scan(&id); err != nil {
		return "", mapWriteError(err, "state_restriction.create", "state restriction")
	}
	return id, nil
}

// DeleteStateRestriction unblocks a state.
func (s *ShippingStore) DeleteStateRestriction(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM state_restrictions WHERE id = $1::uuid`, id)
	return requireRow(tag, err, "state_restriction.delete", "state restriction", id)
}

// =============================================================================
// HEAT SURCHARGES AND PACKAGING FEES
// =============================================================================

// CreateHeatSurcharge inserts a heat surcharge rule.
func (s *ShippingStore) CreateHeatSurcharge(ctx context.Context, in domain.HeatSurchargeInput) (string, error) {
	const q = `
INSERT INTO heat_surcharge_rules (name, zone_id, surcharge_cents, applies_to_frozen_only)
VALUES (COALESCE($1::text, 'Heat surcharge'), $2::uuid, $3, COALESCE($4::boolean, TRUE))
RETURNING id::text
`
	var id string
	if err := s.pool.QueryRow(ctx, q, in.Name, in.ZoneID, in.SurchargeCents, in.AppliesToFrozenOnly).Scan(&id); err != nil {
		return "", mapWriteError(err, "heat_surcharge.create", "heat surcharge")
	}
	return id, nil
}

// DeleteHeatSurcharge removes a heat surcharge rule.
func (s *ShippingStore) DeleteHeatSurcharge(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM heat_surcharge_rules WHERE id = $1::uuid`, id)
	return requireRow(tag, err, "heat_surcharge.delete", "heat surcharge", id)
}

// CreatePackagingFee inserts a packaging fee.
func (s *ShippingStore) CreatePackagingFee(ctx context.Context, in domain.PackagingFeeInput) (string, error) {
	const q = `
INSERT INTO packaging_fees (kind, zone_id, fee_cents)
VALUES ($1, $2::uuid, $3)
RETURNING id::text
`
	var id string
	if err := s.pool.QueryRow(ctx, q, string(in.Kind), in.ZoneID, in.FeeCents).Scan(&id); err != nil {
		return "", mapWriteError(err, "packaging_fee.create", "packaging fee")
	}
	return id, nil
}

// DeletePackagingFee removes a packaging fee.
func (s *ShippingStore) DeletePackagingFee(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM packaging_fees WHERE id = $1::uuid`, id)
	return requireRow(tag, err, "packaging_fee.delete", "packaging fee", id)
}
