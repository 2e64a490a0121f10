package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// StorefrontItem is a catalog line as shown to buyers, after store settings.
type StorefrontItem struct {
	domain.CatalogLine
	DisplayOrder    int     `json:"displayOrder"`
	IsOutOfStock    bool    `json:"isOutOfStock"`
	Featured        bool    `json:"featured"`
	Seasonal        bool    `json:"seasonal"`
	ImageURL        *string `json:"imageUrl"`
	LongDescription *string `json:"longDescription,omitempty"`
}

// AdminCatalogItem is a catalog line with its raw store settings, hidden
// items included.
type AdminCatalogItem struct {
	StorefrontItem
	Hidden                  bool    `json:"hidden"`
	ProductTypeOverride     *string `json:"productTypeOverride"`
	PriceOverrideCents      *int64  `json:"priceOverrideCents"`
	LongDescriptionOverride *string `json:"longDescriptionOverride"`
}

// CatalogService serves the storefront catalog and the catalog admin.
type CatalogService struct {
	provider catalog.Provider
	settings domain.ProductSettingsStore
	audit    auditor
	logger   *slog.Logger
}

// NewCatalogService creates a CatalogService. settings may be nil, in which
// case the provider catalog is served as is.
func NewCatalogService(provider catalog.Provider, settings domain.ProductSettingsStore, audit domain.AuditLogStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		provider: provider,
		settings: settings,
		audit:    auditor{store: audit, logger: logger},
		logger:   logger,
	}
}

// Storefront returns the buyer-facing catalog: hidden variations are
// omitted and items are ordered by display order. Prices always come from
// the provider.
func (s *CatalogService) Storefront(ctx context.Context) ([]StorefrontItem, error) {
	items, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StorefrontItem, 0, len(items))
	for _, item := range items {
		if item.Hidden {
			continue
		}
		out = append(out, item.StorefrontItem)
	}
	return out, nil
}

// AdminCatalog returns every catalog line with its store settings.
func (s *CatalogService) AdminCatalog(ctx context.Context) ([]AdminCatalogItem, error) {
	return s.merged(ctx)
}

func (s *CatalogService) merged(ctx context.Context) ([]AdminCatalogItem, error) {
	if s.provider == nil {
		return nil, catalog.ErrNotConfigured
	}
	lines, err := s.provider.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	settings := map[string]domain.StoreProductSetting{}
	if s.settings != nil {
		loaded, err := s.settings.ListProductSettings(ctx)
		if err != nil {
			// Settings are cosmetic; the catalog is still served.
			s.logger.Warn("product settings unavailable", "error", err)
		} else {
			settings = loaded
		}
	}

	items := make([]AdminCatalogItem, 0, len(lines))
	for i, line := range lines {
		item := AdminCatalogItem{StorefrontItem: StorefrontItem{CatalogLine: line, DisplayOrder: i}}
		if st, ok := settings[line.VariationID]; ok {
			applySetting(&item, st)
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayOrder < items[j].DisplayOrder
	})
	return items, nil
}

func applySetting(item *AdminCatalogItem, st domain.StoreProductSetting) {
	item.DisplayOrder = st.DisplayOrder
	item.IsOutOfStock = st.IsOutOfStock
	item.Featured = st.Featured
	item.Seasonal = st.Seasonal
	item.Hidden = st.Hidden
	item.ProductTypeOverride = st.ProductTypeOverride
	item.PriceOverrideCents = st.PriceOverrideCents
	item.LongDescriptionOverride = st.LongDescriptionOverride

	if st.CustomImageURL != nil && strings.TrimSpace(*st.CustomImageURL) != "" {
		url := strings.TrimSpace(*st.CustomImageURL)
		item.ImageURL = &url
	}
	if st.ProductTypeOverride != nil {
		item.ProductType = domain.ParseProductType(*st.ProductTypeOverride)
	}
	if st.LongDescriptionOverride != nil && strings.TrimSpace(*st.LongDescriptionOverride) != "" {
		item.LongDescription = st.LongDescriptionOverride
	}
}
