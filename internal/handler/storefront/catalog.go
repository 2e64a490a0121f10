package storefront

import (
	"context"
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/service"
)

const msgCatalogFailed = "Failed to load catalog"

// CatalogReader returns the buyer-facing catalog.
type CatalogReader interface {
	Storefront(ctx context.Context) ([]service.StorefrontItem, error)
}

// CatalogHandler handles GET /catalog.
type CatalogHandler struct {
	catalog CatalogReader
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ServeHTTP handles GET /catalog
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Storefront(r.Context())
	if err != nil {
		handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, msgCatalogFailed, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	handler.WriteJSON(w, r, http.StatusOK, items)
}
