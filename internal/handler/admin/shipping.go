package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/service"
)

// ShippingAdmin reads and changes the shipping configuration.
type ShippingAdmin interface {
	GetConfig(ctx context.Context) (*domain.ShippingConfig, error)
	Apply(ctx context.Context, req service.ShippingAdminRequest) (*service.ShippingAdminResult, error)
}

// ShippingHandler handles /admin/shipping.
type ShippingHandler struct {
	shipping ShippingAdmin
}

// NewShippingHandler creates a new shipping admin handler
func NewShippingHandler(shipping ShippingAdmin) *ShippingHandler {
	return &ShippingHandler{shipping: shipping}
}

// Get handles GET /admin/shipping
func (h *ShippingHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.shipping.GetConfig(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, cfg)
}

// Post handles POST /admin/shipping. A body that is not a JSON object is
// treated as {} and so fails as an unknown action.
func (h *ShippingHandler) Post(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("admin.shipping", "Invalid request body"))
		return
	}

	var req service.ShippingAdminRequest
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &req) != nil {
		middleware.GetLogger(r.Context()).Info("shipping admin body ignored", "bytes", len(raw))
		req = service.ShippingAdminRequest{}
		raw = []byte("{}")
	}
	req.Body = raw

	result, err := h.shipping.Apply(r.Context(), req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, r, http.StatusOK, result)
}
