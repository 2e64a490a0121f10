package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

func newShippingAdmin() (*ShippingAdminService, *mockShippingStore, *mockAuditStore) {
	store := &mockShippingStore{}
	audit := &mockAuditStore{}
	return NewShippingAdminService(store, audit, nil), store, audit
}

func decodeShippingRequest(t *testing.T, body string) ShippingAdminRequest {
	t.Helper()
	var req ShippingAdminRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	req.Body = json.RawMessage(body)
	return req
}

func TestShippingAdmin_GetConfigNormalizesEmpty(t *testing.T) {
	svc, _, _ := newShippingAdmin()

	cfg, err := svc.GetConfig(t.Context())
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zones":[],"stateRestrictions":[],"heatSurchargeRules":[],"packagingFees":[]}`, string(raw))
}

func TestShippingAdmin_RequiresWriter(t *testing.T) {
	svc, store, _ := newShippingAdmin()
	req := ShippingAdminRequest{Action: ActionCreateZone}

	_, err := svc.Apply(t.Context(), req)
	require.ErrorIs(t, err, ErrAdminRequired)

	_, err = svc.Apply(viewerCtx(t.Context()), req)
	require.ErrorIs(t, err, ErrWriteForbidden)

	assert.Empty(t, store.calls)
}

func TestShippingAdmin_CreateZone(t *testing.T) {
	svc, store, audit := newShippingAdmin()
	req := decodeShippingRequest(t, `{"action":"createZone","name":"East","states":["pa","ny"],"base_price_cents":900}`)

	res, err := svc.Apply(adminCtx(t.Context()), req)
	require.NoError(t, err)
	assert.Equal(t, &ShippingAdminResult{ID: "id-1"}, res)

	require.Len(t, store.zoneInputs, 1)
	in := store.zoneInputs[0]
	assert.Equal(t, "East", *in.Name)
	assert.Equal(t, []string{"pa", "ny"}, *in.States)
	assert.Equal(t, int64(900), *in.BasePriceCents)
	assert.Nil(t, in.Currency)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, "u-1", entry.UserID)
	assert.Equal(t, "createZone", entry.Action)
	assert.Equal(t, "shipping_zone", entry.ResourceType)
	assert.Equal(t, "id-1", *entry.ResourceID)
	details := audit.details(0)
	assert.Equal(t, "owner@shop.test", details["user_email"])
	assert.Equal(t, "East", details["name"])
}

func TestShippingAdmin_ValidationFailure(t *testing.T) {
	svc, store, _ := newShippingAdmin()
	req := decodeShippingRequest(t, `{"action":"createZone","base_price_cents":-5}`)

	_, err := svc.Apply(adminCtx(t.Context()), req)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, "base_price_cents must be >= 0", domain.ErrorMessage(err))
	assert.Empty(t, store.calls)
}

func TestShippingAdmin_IDRequired(t *testing.T) {
	actions := []string{
		ActionUpdateZone,
		ActionDeleteZone,
		ActionDeleteStateRestriction,
		ActionDeleteHeatSurcharge,
		ActionDeletePackagingFee,
	}

	for _, action := range actions {
		t.Run(action, func(t *testing.T) {
			svc, store, audit := newShippingAdmin()

			_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: action})
			require.ErrorIs(t, err, ErrIDRequired)
			assert.Equal(t, "id required", domain.ErrorMessage(err))
			assert.Empty(t, store.calls)
			assert.Empty(t, audit.entries)
		})
	}
}

func TestShippingAdmin_Deletes(t *testing.T) {
	tests := []struct {
		action       string
		call         string
		resourceType string
	}{
		{ActionDeleteZone, "DeleteZone", "shipping_zone"},
		{ActionDeleteStateRestriction, "DeleteStateRestriction", "state_restriction"},
		{ActionDeleteHeatSurcharge, "DeleteHeatSurcharge", "heat_surcharge_rule"},
		{ActionDeletePackagingFee, "DeletePackagingFee", "packaging_fee"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			svc, store, audit := newShippingAdmin()

			res, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: tt.action, ID: "x-9"})
			require.NoError(t, err)
			assert.True(t, res.OK)
			assert.Equal(t, []string{tt.call}, store.calls)
			assert.Equal(t, []string{"x-9"}, store.deleted)

			require.Len(t, audit.entries, 1)
			assert.Equal(t, tt.resourceType, audit.entries[0].ResourceType)
			assert.Equal(t, map[string]any{"user_email": "owner@shop.test"}, audit.details(0))
		})
	}
}

func TestShippingAdmin_UpdateZoneNotFound(t *testing.T) {
	svc, store, audit := newShippingAdmin()
	store.err = domain.NotFound("shipping_zone.update", "shipping zone", "z1")

	_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: ActionUpdateZone, ID: "z1", Name: ptr("West")})
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Empty(t, audit.entries)
}

func TestShippingAdmin_StateRestriction(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		want  string
		error error
	}{
		{"lowercase", "ak", "AK", nil},
		{"truncated", "hawaii", "HA", nil},
		{"padded", " hi ", "HI", nil},
		{"too short", "h", "", ErrInvalidState},
		{"empty", "", "", ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newShippingAdmin()

			_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: ActionCreateStateRestriction, StateCode: tt.code})
			if tt.error != nil {
				require.ErrorIs(t, err, tt.error)
				assert.Empty(t, store.restrictions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, store.restrictions)
		})
	}
}

func TestShippingAdmin_HeatSurcharge(t *testing.T) {
	svc, store, _ := newShippingAdmin()
	req := decodeShippingRequest(t, `{"action":"createHeatSurcharge","zone_id":"","surcharge_cents":500}`)

	res, err := svc.Apply(adminCtx(t.Context()), req)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)

	require.Len(t, store.heatInputs, 1)
	in := store.heatInputs[0]
	assert.Nil(t, in.ZoneID, "empty zone id means all zones")
	assert.Equal(t, int64(500), in.SurchargeCents)
	assert.Nil(t, in.AppliesToFrozenOnly)
}

func TestShippingAdmin_PackagingFee(t *testing.T) {
	t.Run("invalid kind", func(t *testing.T) {
		svc, store, _ := newShippingAdmin()
		_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: ActionCreatePackagingFee, Kind: "dry_ice"})
		require.ErrorIs(t, err, ErrInvalidKind)
		assert.Equal(t, "kind must be ice_pack or insulated", domain.ErrorMessage(err))
		assert.Empty(t, store.feeInputs)
	})

	t.Run("valid", func(t *testing.T) {
		svc, store, _ := newShippingAdmin()
		_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{
			Action:   ActionCreatePackagingFee,
			Kind:     "insulated",
			ZoneID:   ptr("zone-1"),
			FeeCents: 250,
		})
		require.NoError(t, err)
		require.Len(t, store.feeInputs, 1)
		assert.Equal(t, domain.PackagingInsulated, store.feeInputs[0].Kind)
		assert.Equal(t, "zone-1", *store.feeInputs[0].ZoneID)
	})
}

func TestShippingAdmin_UnknownAction(t *testing.T) {
	svc, _, _ := newShippingAdmin()

	_, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: "dropTables"})
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestShippingAdmin_AuditFailureDoesNotFailWrite(t *testing.T) {
	svc, _, audit := newShippingAdmin()
	audit.err = errors.New("audit table locked")

	res, err := svc.Apply(adminCtx(t.Context()), ShippingAdminRequest{Action: ActionDeleteZone, ID: "z1"})
	require.NoError(t, err)
	assert.True(t, res.OK)
}
