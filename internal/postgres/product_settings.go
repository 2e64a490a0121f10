package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// ProductSettingsStore implements domain.ProductSettingsStore.
type ProductSettingsStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure ProductSettingsStore implements domain.ProductSettingsStore.
var _ domain.ProductSettingsStore = (*ProductSettingsStore)(nil)

// NewProductSettingsStore creates a new ProductSettingsStore.
func NewProductSettingsStore(p *pgxpool.Pool) *ProductSettingsStore {
	return &ProductSettingsStore{pool: p}
}

const settingColumns = `variation_id, catalog_item_id, display_order, is_out_of_stock, custom_image_url,
       hidden, featured, seasonal, product_type_override, price_override_cents,
       long_description_override, updated_at`

func scanSetting(row pgx.Row) (domain.StoreProductSetting, error) {
	var s domain.StoreProductSetting
	err := row.Scan(
		&s.VariationID,
		&s.CatalogItemID,
		&s.DisplayOrder,
		&s.IsOutOfStock,
		&s.CustomImageURL,
		&s.Hidden,
		&s.Featured,
		&s.Seasonal,
		&s.ProductTypeOverride,
		&s.PriceOverrideCents,
		&s.LongDescriptionOverride,
		&s.UpdatedAt,
	)
	return s, err
}

// ListProductSettings returns all settings keyed by variation id.
func (s *ProductSettingsStore) ListProductSettings(ctx context.Context) (map[string]domain.StoreProductSetting, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+settingColumns+` FROM store_product_settings`)
	if err != nil {
		return nil, domain.Internal(err, "product_settings.list", "failed to list product settings")
	}
	settings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StoreProductSetting, error) {
		return scanSetting(row)
	})
	if err != nil {
		return nil, domain.Internal(err, "product_settings.list", "failed to list product settings")
	}

	out := make(map[string]domain.StoreProductSetting, len(settings))
	for _, st := range settings {
		out[st.VariationID] = st
	}
	return out, nil
}

// UpsertProductSetting creates the row if needed and applies the non-nil patch fields.
func (s *ProductSettingsStore) UpsertProductSetting(ctx context.Context, variationID, catalogItemID string, patch domain.StoreProductSettingPatch) (*domain.StoreProductSetting, error) {
	const q = `
INSERT INTO store_product_settings (
    variation_id, catalog_item_id, display_order, is_out_of_stock, custom_image_url,
    hidden, featured, seasonal, product_type_override, price_override_cents,
    long_description_override
)
VALUES (
    $1, $2,
    COALESCE($3::integer, 0),
    COALESCE($4::boolean, FALSE),
    $5::text,
    COALESCE($6::boolean, FALSE),
    COALESCE($7::boolean, FALSE),
    COALESCE($8::boolean, FALSE),
    $9::text,
    $10::bigint,
    $11::text
)
ON CONFLICT (variation_id) DO UPDATE SET
    catalog_item_id           = CASE WHEN EXCLUDED.catalog_item_id = '' THEN store_product_settings.catalog_item_id ELSE EXCLUDED.catalog_item_id END,
    display_order             = COALESCE($3::integer, store_product_settings.display_order),
    is_out_of_stock           = COALESCE($4::boolean, store_product_settings.is_out_of_stock),
    custom_image_url          = COALESCE($5::text, store_product_settings.custom_image_url),
    hidden                    = COALESCE($6::boolean, store_product_settings.hidden),
    featured                  = COALESCE($7::boolean, store_product_settings.featured),
    seasonal                  = COALESCE($8::boolean, store_product_settings.seasonal),
    product_type_override     = COALESCE($9::text, store_product_settings.product_type_override),
    price_override_cents      = COALESCE($10::bigint, store_product_settings.price_override_cents),
    long_description_override = COALESCE($11::text, store_product_settings.long_description_override),
    updated_at                = NOW()
RETURNING ` + settingColumns

	row := s.pool.QueryRow(ctx, q,
		variationID,
		catalogItemID,
		patch.DisplayOrder,
		patch.IsOutOfStock,
		patch.CustomImageURL,
		patch.Hidden,
		patch.Featured,
		patch.Seasonal,
		patch.ProductTypeOverride,
		patch.PriceOverrideCents,
		patch.LongDescriptionOverride,
	)
	setting, err := scanSetting(row)
	if err != nil {
		return nil, mapWriteError(err, "product_settings.upsert", "product setting")
	}
	return &setting, nil
}

// DeleteProductSetting removes the settings for a variation.
func (s *ProductSettingsStore) DeleteProductSetting(ctx context.Context, variationID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM store_product_settings WHERE variation_id = $1`, variationID)
	return requireRow(tag, err, "product_settings.delete", "product setting", variationID)
}
