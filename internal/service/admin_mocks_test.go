package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockAuditStore implements domain.AuditLogStore for testing
type mockAuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (m *mockAuditStore) InsertAuditLog(ctx context.Context, entry domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditStore) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.entries...), nil
}

func (m *mockAuditStore) details(i int) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(m.entries[i].Details, &out)
	return out
}

// mockShippingStore implements domain.ShippingConfigStore for testing
type mockShippingStore struct {
	cfg     *domain.ShippingConfig
	loadErr error
	err     error
	nextID  int
	calls   []string

	zoneInputs   []domain.ZoneInput
	restrictions []string
	heatInputs   []domain.HeatSurchargeInput
	feeInputs    []domain.PackagingFeeInput
	deleted      []string
}

func (m *mockShippingStore) id(call string) (string, error) {
	m.calls = append(m.calls, call)
	if m.err != nil {
		return "", m.err
	}
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID), nil
}

func (m *mockShippingStore) LoadShippingConfig(ctx context.Context) (*domain.ShippingConfig, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cfg == nil {
		return &domain.ShippingConfig{}, nil
	}
	return m.cfg, nil
}

func (m *mockShippingStore) CreateZone(ctx context.Context, in domain.ZoneInput) (string, error) {
	m.zoneInputs = append(m.zoneInputs, in)
	return m.id("CreateZone")
}

func (m *mockShippingStore) UpdateZone(ctx context.Context, id string, in domain.ZoneInput) error {
	m.zoneInputs = append(m.zoneInputs, in)
	_, err := m.id("UpdateZone")
	return err
}

func (m *mockShippingStore) DeleteZone(ctx context.Context, id string) error {
	return m.del("DeleteZone", id)
}

func (m *mockShippingStore) CreateStateRestriction(ctx context.Context, stateCode string, reason *string) (string, error) {
	m.restrictions = append(m.restrictions, stateCode)
	return m.id("CreateStateRestriction")
}

func (m *mockShippingStore) DeleteStateRestriction(ctx context.Context, id string) error {
	return m.del("DeleteStateRestriction", id)
}

func (m *mockShippingStore) CreateHeatSurcharge(ctx context.Context, in domain.HeatSurchargeInput) (string, error) {
	m.heatInputs = append(m.heatInputs, in)
	return m.id("CreateHeatSurcharge")
}

func (m *mockShippingStore) DeleteHeatSurcharge(ctx context.Context, id string) error {
	return m.del("DeleteHeatSurcharge", id)
}

func (m *mockShippingStore) CreatePackagingFee(ctx context.Context, in domain.PackagingFeeInput) (string, error) {
	m.feeInputs = append(m.feeInputs, in)
	return m.id("CreatePackagingFee")
}

func (m *mockShippingStore) DeletePackagingFee(ctx context.Context, id string) error {
	return m.del("DeletePackagingFee", id)
}

func (m *mockShippingStore) del(call, id string) error {
	m.calls = append(m.calls, call)
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// mockSettingsStore implements domain.ProductSettingsStore for testing
type mockSettingsStore struct {
	settings  map[string]domain.StoreProductSetting
	listErr   error
	upsertErr error
	deleteErr error
	upserts   []domain.StoreProductSettingPatch
	deleted   []string
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{settings: make(map[string]domain.StoreProductSetting)}
}

func (m *mockSettingsStore) ListProductSettings(ctx context.Context) (map[string]domain.StoreProductSetting, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make(map[string]domain.StoreProductSetting, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *mockSettingsStore) UpsertProductSetting(ctx context.Context, variationID, catalogItemID string, patch domain.StoreProductSettingPatch) (*domain.StoreProductSetting, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts = append(m.upserts, patch)
	st := m.settings[variationID]
	st.VariationID = variationID
	if catalogItemID != "" {
		st.CatalogItemID = catalogItemID
	}
	if patch.DisplayOrder != nil {
		st.DisplayOrder = *patch.DisplayOrder
	}
	if patch.IsOutOfStock != nil {
		st.IsOutOfStock = *patch.IsOutOfStock
	}
	if patch.Hidden != nil {
		st.Hidden = *patch.Hidden
	}
	if patch.CustomImageURL != nil {
		st.CustomImageURL = patch.CustomImageURL
	}
	if patch.ProductTypeOverride != nil {
		st.ProductTypeOverride = patch.ProductTypeOverride
	}
	if patch.PriceOverrideCents != nil {
		st.PriceOverrideCents = patch.PriceOverrideCents
	}
	m.settings[variationID] = st
	return &st, nil
}

func (m *mockSettingsStore) DeleteProductSetting(ctx context.Context, variationID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, variationID)
	delete(m.settings, variationID)
	return nil
}

// ============================================================================
// Context helpers
// ============================================================================

func adminCtx(ctx context.Context) context.Context {
	return domain.NewContextWithAdmin(ctx, &domain.AdminIdentity{UserID: "u-1", Email: "owner@shop.test", Role: domain.AdminRoleAdmin})
}

func viewerCtx(ctx context.Context) context.Context {
	return domain.NewContextWithAdmin(ctx, &domain.AdminIdentity{UserID: "u-2", Email: "staff@shop.test", Role: domain.AdminRoleViewer})
}

func ptr[T any](v T) *T { return &v }
