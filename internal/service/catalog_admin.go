package service

import (
	"context"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// CreateItem creates a provider item with a single "Default" variation and
// appends it to the end of the store order.
func (s *CatalogService) CreateItem(ctx context.Context, in catalog.ItemInput) (*catalog.CreatedItem, error) {
	if err := requireWriter(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Currency == "" {
		in.Currency = domain.DefaultCurrency
	}
	if err := validateStruct("catalog.create_item", in); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, catalog.ErrNotConfigured
	}

	created, err := s.provider.CreateItem(ctx, in)
	if err != nil {
		return nil, err
	}

	if s.settings != nil {
		order := 0
		if existing, err := s.settings.ListProductSettings(ctx); err == nil {
			order = len(existing)
		}
		if _, err := s.settings.UpsertProductSetting(ctx, created.VariationID, created.ItemID, domain.StoreProductSettingPatch{
			DisplayOrder: &order,
		}); err != nil {
			s.logger.Warn("initial product setting failed", "variation_id", created.VariationID, "error", err)
		}
	}

	s.audit.record(ctx, "product_created", "product", created.ItemID, map[string]any{
		"name":        in.Name,
		"variationId": created.VariationID,
	})
	s.logger.Info("catalog item created", "item_id", created.ItemID, "variation_id", created.VariationID)
	return created, nil
}

// DeleteItem deletes a provider item and its variation, then drops the
// variation's store settings.
func (s *CatalogService) DeleteItem(ctx context.Context, itemID, variationID string) error {
	if err := requireWriter(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" {
		return ErrItemIDRequired
	}
	if strings.TrimSpace(variationID) == "" {
		return ErrVariationIDRequired
	}
	if s.provider == nil {
		return catalog.ErrNotConfigured
	}

	if err := s.provider.DeleteItem(ctx, itemID, variationID); err != nil {
		return err
	}

	if s.settings != nil {
		if err := s.settings.DeleteProductSetting(ctx, variationID); err != nil && !domain.IsCode(err, domain.ENOTFOUND) {
			s.logger.Warn("product setting cleanup failed", "variation_id", variationID, "error", err)
		}
	}

	s.audit.record(ctx, "product_deleted", "product", itemID, map[string]any{"variationId": variationID})
	s.logger.Info("catalog item deleted", "item_id", itemID, "variation_id", variationID)
	return nil
}

// ProductSettingUpdate changes one variation's store settings.
type ProductSettingUpdate struct {
	VariationID   string
	CatalogItemID string
	Patch         domain.StoreProductSettingPatch
}

// UpdateProductSetting upserts the store settings of one variation.
func (s *CatalogService) UpdateProductSetting(ctx context.Context, upd ProductSettingUpdate) (*domain.StoreProductSetting, error) {
	if err := requireWriter(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(upd.VariationID) == "" {
		return nil, ErrVariationIDRequired
	}
	if err := validateStruct("product_settings.update", upd.Patch); err != nil {
		return nil, err
	}

	setting, err := s.settings.UpsertProductSetting(ctx, upd.VariationID, upd.CatalogItemID, upd.Patch)
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "product_setting_updated", "product", upd.VariationID, map[string]any{
		"catalogItemId": upd.CatalogItemID,
		"patch":         upd.Patch,
	})
	return setting, nil
}

// SaveDisplayOrder assigns display order 0..n-1 to variationIDs in the given
// order. Unknown variations are skipped.
func (s *CatalogService) SaveDisplayOrder(ctx context.Context, variationIDs []string) error {
	if err := requireWriter(ctx); err != nil {
		return err
	}

	items, err := s.merged(ctx)
	if err != nil {
		return err
	}
	itemIDs := make(map[string]string, len(items))
	for _, item := range items {
		itemIDs[item.VariationID] = item.ID
	}

	for i, vid := range variationIDs {
		itemID, ok := itemIDs[vid]
		if !ok {
			continue
		}
		order := i
		if _, err := s.settings.UpsertProductSetting(ctx, vid, itemID, domain.StoreProductSettingPatch{DisplayOrder: &order}); err != nil {
			return err
		}
	}

	s.audit.record(ctx, "product_order_updated", "product", "", map[string]any{"variationIds": len(variationIDs)})
	return nil
}
