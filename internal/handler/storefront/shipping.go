package storefront

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/shipping"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

const (
	msgInvalidShippingRequest = "Missing or invalid cart or state"
	msgShippingFailed         = "Failed to calculate shipping"
)

// ShippingHandler handles POST /shipping quotes for the checkout page.
type ShippingHandler struct {
	calculator shipping.Calculator
	metrics    *telemetry.BusinessMetrics
}

// NewShippingHandler creates a new shipping quote handler
func NewShippingHandler(calculator shipping.Calculator, metrics *telemetry.BusinessMetrics) *ShippingHandler {
	return &ShippingHandler{calculator: calculator, metrics: metrics}
}

// quoteLine is a client cart line as sent for a quote. Frozen and merch
// flags are taken at face value; checkout re-quotes from the catalog.
type quoteLine struct {
	CatalogObjectID any     `json:"catalogObjectId"`
	Quantity        float64 `json:"quantity"`
	IsFrozen        bool    `json:"isFrozen"`
	Name            *string `json:"name"`
}

type quoteRequest struct {
	Cart  json.RawMessage `json:"cart"`
	State any             `json:"state"`
}

// ServeHTTP handles POST /shipping
func (h *ShippingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var body quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, msgShippingFailed, err)
		return
	}

	state, _ := body.State.(string)
	state = strings.TrimSpace(state)
	trimmedCart := strings.TrimSpace(string(body.Cart))
	if state == "" || !strings.HasPrefix(trimmedCart, "[") {
		handler.ErrorMessageResponse(w, r, http.StatusBadRequest, msgInvalidShippingRequest, nil)
		return
	}

	var lines []quoteLine
	if err := json.Unmarshal(body.Cart, &lines); err != nil {
		handler.ErrorMessageResponse(w, r, http.StatusBadRequest, msgInvalidShippingRequest, nil)
		return
	}

	items := make([]domain.ShippingItem, 0, len(lines))
	for _, l := range lines {
		qty := math.Floor(l.Quantity)
		if qty <= 0 || math.IsInf(qty, 0) || qty > math.MaxInt32 {
			continue
		}
		item := domain.ShippingItem{
			CatalogObjectID: stringify(l.CatalogObjectID),
			Quantity:        int64(qty),
			IsFrozen:        l.IsFrozen,
		}
		if l.Name != nil {
			item.IsMerch = domain.IsMerchProduct(*l.Name)
		}
		items = append(items, item)
	}

	breakdown, err := h.calculator.Calculate(r.Context(), items, state)
	if err != nil {
		h.metrics.RecordShippingQuote("error")
		handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, msgShippingFailed, err)
		return
	}

	if breakdown.Allowed {
		h.metrics.RecordShippingQuote("allowed")
	} else {
		h.metrics.RecordShippingQuote("blocked")
	}
	logger.Debug("shipping quoted", "state", state, "allowed", breakdown.Allowed, "total", breakdown.Total)
	handler.WriteJSON(w, r, http.StatusOK, breakdown)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
