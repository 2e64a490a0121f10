package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/service"
)

// CatalogAdmin manages provider items and their store settings.
type CatalogAdmin interface {
	AdminCatalog(ctx context.Context) ([]service.AdminCatalogItem, error)
	CreateItem(ctx context.Context, in catalog.ItemInput) (*catalog.CreatedItem, error)
	DeleteItem(ctx context.Context, itemID, variationID string) error
	UpdateProductSetting(ctx context.Context, upd service.ProductSettingUpdate) (*domain.StoreProductSetting, error)
	SaveDisplayOrder(ctx context.Context, variationIDs []string) error
}

// CatalogHandler handles /admin/catalog and /admin/products.
type CatalogHandler struct {
	catalog CatalogAdmin
}

// NewCatalogHandler creates a new catalog admin handler
func NewCatalogHandler(catalog CatalogAdmin) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

var errInvalidJSON = domain.Invalid("admin.decode", "Invalid JSON")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// CreateItem handles POST /admin/catalog/items
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in catalog.ItemInput
	if err := decode(r, &in); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	created, err := h.catalog.CreateItem(r.Context(), in)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusCreated, created)
}

// DeleteItem handles DELETE /admin/catalog/items/{itemId}?variationId=
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	variationID := r.URL.Query().Get("variationId")

	if err := h.catalog.DeleteItem(r.Context(), itemID, variationID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

// ListSettings handles GET /admin/products/settings. Every catalog
// variation is listed with its settings, hidden ones included.
func (h *CatalogHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.AdminCatalog(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, map[string]any{"products": items})
}

type updateSettingRequest struct {
	CatalogItemID string `json:"catalog_item_id"`
	domain.StoreProductSettingPatch
}

// UpdateSetting handles PUT /admin/products/settings/{variationId}
func (h *CatalogHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var body updateSettingRequest
	if err := decode(r, &body); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	setting, err := h.catalog.UpdateProductSetting(r.Context(), service.ProductSettingUpdate{
		VariationID:   r.PathValue("variationId"),
		CatalogItemID: body.CatalogItemID,
		Patch:         body.StoreProductSettingPatch,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, setting)
}

// SaveOrder handles PUT /admin/products/order with {"variationIds": [...]}.
func (h *CatalogHandler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VariationIDs []string `json:"variationIds"`
	}
	if err := decode(r, &body); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.SaveDisplayOrder(r.Context(), body.VariationIDs); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
