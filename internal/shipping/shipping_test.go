package shipping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/shipping"
)

func iceCream(qty int64, frozen bool) domain.ShippingItem {
	return domain.ShippingItem{CatalogObjectID: "ic", Quantity: qty, IsFrozen: frozen}
}

func merch(qty int64) domain.ShippingItem {
	return domain.ShippingItem{CatalogObjectID: "tee", Quantity: qty, IsMerch: true}
}

func newEngine(t *testing.T, cfg *domain.ShippingConfig) *shipping.Engine {
	t.Helper()
	engine, err := shipping.NewEngine(
		shipping.NewFlatRateStrategy(nil),
		shipping.NewZoneStrategy(shipping.StaticConfig{Config: cfg}),
	)
	require.NoError(t, err)
	return engine
}

func assertTotalIsSum(t *testing.T, b domain.ShippingBreakdown) {
	t.Helper()
	assert.Equal(t, b.Subtotal+b.HeatSurcharge+b.IcePackFee+b.InsulatedPackagingFee+b.MerchFee, b.Total)
	if !b.Allowed {
		assert.Zero(t, b.Subtotal)
		assert.Zero(t, b.HeatSurcharge)
		assert.Zero(t, b.IcePackFee)
		assert.Zero(t, b.InsulatedPackagingFee)
		assert.Zero(t, b.MerchFee)
		assert.Zero(t, b.Total)
	}
}

func TestNewEngine_RequiresStrategies(t *testing.T) {
	_, err := shipping.NewEngine()
	assert.ErrorIs(t, err, shipping.ErrNoStrategies)
}

func TestNormalizeState(t *testing.T) {
	tests := map[string]string{
		"pa":           "PA",
		" ny ":         "NY",
		"California":   "CA",
		"":             "",
		"t":            "T",
		"tx-extra-bit": "TX",
	}
	for in, want := range tests {
		assert.Equal(t, want, shipping.NormalizeState(in), "input %q", in)
	}
}

func TestPartition(t *testing.T) {
	req := shipping.Partition([]domain.ShippingItem{
		iceCream(2, true),
		iceCream(0, true),
		merch(1),
		iceCream(3, false),
	}, "pa")

	assert.Equal(t, "PA", req.State)
	assert.Equal(t, int64(5), req.IceCreamPackages)
	assert.True(t, req.HasMerch)
	assert.True(t, req.HasFrozen)
}

func TestEngine_FlatRateIceCream(t *testing.T) {
	engine := newEngine(t, nil)

	b, err := engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(2, true)}, "PA")
	require.NoError(t, err)

	assert.True(t, b.Allowed)
	assert.Equal(t, int64(2000), b.Subtotal)
	assert.Equal(t, int64(2000), b.Total)
	assert.Zero(t, b.HeatSurcharge)
	assert.Zero(t, b.IcePackFee)
	assert.Equal(t, "USD", b.Currency)
	assertTotalIsSum(t, b)
}

func TestEngine_FlatRateEveryTableState(t *testing.T) {
	engine := newEngine(t, nil)
	ctx := context.Background()

	for state, rate := range shipping.DefaultStateRates {
		b, err := engine.Calculate(ctx, []domain.ShippingItem{iceCream(3, true)}, state)
		require.NoError(t, err)
		assert.True(t, b.Allowed, state)
		assert.Equal(t, rate*3, b.Total, state)
		assertTotalIsSum(t, b)

		mixed, err := engine.Calculate(ctx, []domain.ShippingItem{iceCream(3, true), merch(1)}, state)
		require.NoError(t, err)
		assert.Equal(t, b.Subtotal, mixed.Subtotal, state)
		assert.Equal(t, b.Total+shipping.MerchFlatFeeCents, mixed.Total, state)
		assertTotalIsSum(t, mixed)
	}
}

func TestEngine_MerchOnlyIsFlatAnywhere(t *testing.T) {
	engine := newEngine(t, nil)

	for _, state := range []string{"PA", "CA", "AK", "HI", "ZZ"} {
		b, err := engine.Calculate(context.Background(), []domain.ShippingItem{merch(4)}, state)
		require.NoError(t, err)
		assert.True(t, b.Allowed, state)
		assert.Equal(t, shipping.MerchFlatFeeCents, b.Subtotal, state)
		assert.Equal(t, shipping.MerchFlatFeeCents, b.Total, state)
		assert.Zero(t, b.MerchFee, state)
	}
}

func TestEngine_EmptyCart(t *testing.T) {
	engine := newEngine(t, nil)

	for _, items := range [][]domain.ShippingItem{nil, {iceCream(0, true)}} {
		b, err := engine.Calculate(context.Background(), items, "PA")
		require.NoError(t, err)
		assert.False(t, b.Allowed)
		assert.Equal(t, "No shippable items in cart.", b.BlockedReason)
		assertTotalIsSum(t, b)
	}
}

func TestEngine_StateRequired(t *testing.T) {
	engine := newEngine(t, nil)

	_, err := engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(1, true)}, "  ")
	assert.ErrorIs(t, err, shipping.ErrStateRequired)
}

func TestEngine_UnknownStateWithoutZones(t *testing.T) {
	engine := newEngine(t, nil)

	b, err := engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(1, true)}, "AK")
	require.NoError(t, err)
	assert.False(t, b.Allowed)
	assert.Equal(t, "No shipping available for state AK.", b.BlockedReason)
	assertTotalIsSum(t, b)
}

func TestEngine_FallsBackToZones(t *testing.T) {
	engine := newEngine(t, &domain.ShippingConfig{
		Zones: []domain.ShippingZone{
			{ID: "z-nc", Name: "Noncontiguous", States: []string{"AK", "HI"}, BasePriceCents: 9000},
		},
	})

	b, err := engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(2, false), merch(1)}, "hi")
	require.NoError(t, err)
	assert.True(t, b.Allowed)
	assert.Equal(t, "z-nc", b.ZoneID)
	assert.Equal(t, int64(18000), b.Subtotal)
	assert.Equal(t, shipping.MerchFlatFeeCents, b.MerchFee)
	assert.Equal(t, int64(18000)+shipping.MerchFlatFeeCents, b.Total)
	assertTotalIsSum(t, b)
}

func TestEngine_TableStateNeverConsultsZones(t *testing.T) {
	engine, err := shipping.NewEngine(
		shipping.NewFlatRateStrategy(nil),
		shipping.NewZoneStrategy(shipping.StaticConfig{Err: errors.New("db down")}),
	)
	require.NoError(t, err)

	b, err := engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(1, true)}, "NY")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), b.Total)
}

func TestEngine_ZoneConfigError(t *testing.T) {
	engine, err := shipping.NewEngine(
		shipping.NewFlatRateStrategy(nil),
		shipping.NewZoneStrategy(shipping.StaticConfig{Err: errors.New("db down")}),
	)
	require.NoError(t, err)

	_, err = engine.Calculate(context.Background(), []domain.ShippingItem{iceCream(1, true)}, "AK")
	require.Error(t, err)

	var shipErr *shipping.ShippingError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, "internal", shipErr.ErrorCode())
}
