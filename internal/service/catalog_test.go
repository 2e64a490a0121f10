package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

func catalogFixture() (*CatalogService, *catalog.MockProvider, *mockSettingsStore, *mockAuditStore) {
	provider := &catalog.MockProvider{
		Lines: []domain.CatalogLine{
			{ID: "I1", VariationID: "V1", Name: "Vanilla", PriceAmount: 1200, Currency: "USD", ProductType: domain.ProductTypeIceCream},
			{ID: "I2", VariationID: "V2", Name: "Chocolate", PriceAmount: 1300, Currency: "USD", ProductType: domain.ProductTypeIceCream},
			{ID: "I3", VariationID: "V3", Name: "Green Kids Tee", PriceAmount: 2000, Currency: "USD", ProductType: domain.ProductTypeMerchandise},
		},
		Created: &catalog.CreatedItem{ItemID: "I9", VariationID: "V9"},
	}
	settings := newMockSettingsStore()
	audit := &mockAuditStore{}
	return NewCatalogService(provider, settings, audit, nil), provider, settings, audit
}

func variationIDs(items []StorefrontItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariationID)
	}
	return ids
}

func TestCatalog_StorefrontWithoutSettings(t *testing.T) {
	svc, _, _, _ := catalogFixture()

	items, err := svc.Storefront(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2", "V3"}, variationIDs(items))
	assert.Equal(t, 1, items[1].DisplayOrder)
	assert.Nil(t, items[0].ImageURL)
}

func TestCatalog_StorefrontAppliesSettings(t *testing.T) {
	svc, _, settings, _ := catalogFixture()
	settings.settings["V1"] = domain.StoreProductSetting{VariationID: "V1", DisplayOrder: 5, IsOutOfStock: true, CustomImageURL: ptr(" /media/van.jpg ")}
	settings.settings["V2"] = domain.StoreProductSetting{VariationID: "V2", Hidden: true}
	settings.settings["V3"] = domain.StoreProductSetting{VariationID: "V3", DisplayOrder: 0, ProductTypeOverride: ptr("gift_card"), PriceOverrideCents: ptr(int64(1))}

	items, err := svc.Storefront(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"V3", "V1"}, variationIDs(items))

	tee := items[0]
	assert.Equal(t, domain.ProductTypeGiftCard, tee.ProductType)
	assert.Equal(t, int64(2000), tee.PriceAmount, "price overrides never reach the storefront price")

	vanilla := items[1]
	assert.True(t, vanilla.IsOutOfStock)
	require.NotNil(t, vanilla.ImageURL)
	assert.Equal(t, "/media/van.jpg", *vanilla.ImageURL)
}

func TestCatalog_AdminCatalogIncludesHidden(t *testing.T) {
	svc, _, settings, _ := catalogFixture()
	settings.settings["V2"] = domain.StoreProductSetting{VariationID: "V2", Hidden: true, DisplayOrder: 1}

	items, err := svc.AdminCatalog(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[1].Hidden)
}

func TestCatalog_SettingsFailureStillServesCatalog(t *testing.T) {
	svc, _, settings, _ := catalogFixture()
	settings.listErr = errors.New("relation does not exist")

	items, err := svc.Storefront(t.Context())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestCatalog_ProviderFailure(t *testing.T) {
	svc, provider, _, _ := catalogFixture()
	provider.ListErr = errors.New("timeout")

	_, err := svc.Storefront(t.Context())
	require.Error(t, err)

	unconfigured := NewCatalogService(nil, nil, nil, nil)
	_, err = unconfigured.Storefront(t.Context())
	require.ErrorIs(t, err, catalog.ErrNotConfigured)
}

func TestCatalog_CreateItem(t *testing.T) {
	svc, provider, settings, audit := catalogFixture()
	settings.settings["V1"] = domain.StoreProductSetting{VariationID: "V1"}

	created, err := svc.CreateItem(adminCtx(t.Context()), catalog.ItemInput{Name: "  Mint Chip ", PriceCents: 1400})
	require.NoError(t, err)
	assert.Equal(t, "I9", created.ItemID)

	require.Len(t, provider.ItemCalls, 1)
	assert.Equal(t, catalog.ItemInput{Name: "Mint Chip", PriceCents: 1400, Currency: "USD"}, provider.ItemCalls[0])

	require.Contains(t, settings.settings, "V9")
	assert.Equal(t, 1, settings.settings["V9"].DisplayOrder)
	assert.Equal(t, "I9", settings.settings["V9"].CatalogItemID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "product_created", audit.entries[0].Action)
	assert.Equal(t, "Mint Chip", audit.details(0)["name"])
}

func TestCatalog_CreateItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		input catalog.ItemInput
		field string
	}{
		{"blank name", catalog.ItemInput{Name: "   ", PriceCents: 100}, "name"},
		{"negative price", catalog.ItemInput{Name: "Tee", PriceCents: -1}, "priceCents"},
		{"bad currency", catalog.ItemInput{Name: "Tee", Currency: "DOLLARS"}, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider, _, _ := catalogFixture()

			_, err := svc.CreateItem(adminCtx(t.Context()), tt.input)
			require.Error(t, err)
			assert.Contains(t, domain.GetValidationFields(err), tt.field)
			assert.Empty(t, provider.ItemCalls)
		})
	}
}

func TestCatalog_WritesRequireAdminRole(t *testing.T) {
	svc, provider, _, _ := catalogFixture()
	ctx := viewerCtx(t.Context())

	_, err := svc.CreateItem(ctx, catalog.ItemInput{Name: "Tee"})
	require.ErrorIs(t, err, ErrWriteForbidden)

	err = svc.DeleteItem(ctx, "I1", "V1")
	require.ErrorIs(t, err, ErrWriteForbidden)

	_, err = svc.UpdateProductSetting(ctx, ProductSettingUpdate{VariationID: "V1"})
	require.ErrorIs(t, err, ErrWriteForbidden)

	err = svc.SaveDisplayOrder(ctx, []string{"V1"})
	require.ErrorIs(t, err, ErrWriteForbidden)

	assert.Empty(t, provider.ItemCalls)
	assert.Empty(t, provider.DeleteCalls)
}

func TestCatalog_DeleteItem(t *testing.T) {
	t.Run("missing ids", func(t *testing.T) {
		svc, _, _, _ := catalogFixture()
		require.ErrorIs(t, svc.DeleteItem(adminCtx(t.Context()), "", "V1"), ErrItemIDRequired)
		require.ErrorIs(t, svc.DeleteItem(adminCtx(t.Context()), "I1", ""), ErrVariationIDRequired)
	})

	t.Run("deletes item and settings", func(t *testing.T) {
		svc, provider, settings, audit := catalogFixture()
		settings.settings["V1"] = domain.StoreProductSetting{VariationID: "V1"}

		require.NoError(t, svc.DeleteItem(adminCtx(t.Context()), "I1", "V1"))
		assert.Equal(t, [][2]string{{"I1", "V1"}}, provider.DeleteCalls)
		assert.Equal(t, []string{"V1"}, settings.deleted)
		require.Len(t, audit.entries, 1)
		assert.Equal(t, "product_deleted", audit.entries[0].Action)
	})

	t.Run("provider failure keeps settings", func(t *testing.T) {
		svc, provider, settings, audit := catalogFixture()
		provider.DeleteErr = errors.New("NOT_FOUND")

		require.Error(t, svc.DeleteItem(adminCtx(t.Context()), "I1", "V1"))
		assert.Empty(t, settings.deleted)
		assert.Empty(t, audit.entries)
	})
}

func TestCatalog_UpdateProductSetting(t *testing.T) {
	svc, _, settings, audit := catalogFixture()

	setting, err := svc.UpdateProductSetting(adminCtx(t.Context()), ProductSettingUpdate{
		VariationID:   "V2",
		CatalogItemID: "I2",
		Patch:         domain.StoreProductSettingPatch{Hidden: ptr(true)},
	})
	require.NoError(t, err)
	assert.True(t, setting.Hidden)
	assert.True(t, settings.settings["V2"].Hidden)
	require.Len(t, audit.entries, 1)

	_, err = svc.UpdateProductSetting(adminCtx(t.Context()), ProductSettingUpdate{
		VariationID: "V2",
		Patch:       domain.StoreProductSettingPatch{ProductTypeOverride: ptr("sorbet")},
	})
	require.Error(t, err)
	assert.Contains(t, domain.GetValidationFields(err), "product_type_override")
}

func TestCatalog_SaveDisplayOrder(t *testing.T) {
	svc, _, settings, _ := catalogFixture()

	require.NoError(t, svc.SaveDisplayOrder(adminCtx(t.Context()), []string{"V3", "UNKNOWN", "V1", "V2"}))
	assert.Equal(t, 0, settings.settings["V3"].DisplayOrder)
	assert.Equal(t, 2, settings.settings["V1"].DisplayOrder)
	assert.Equal(t, 3, settings.settings["V2"].DisplayOrder)
	assert.NotContains(t, settings.settings, "UNKNOWN")

	items, err := svc.Storefront(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"V3", "V1", "V2"}, variationIDs(items))
}
