package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/service"
)

// Checkout responses for failures the buyer cannot fix.
const (
	msgCheckoutFailed        = "Checkout failed. Please try again."
	msgCheckoutNotConfigured = "Checkout is not configured"
	msgInvalidJSON           = "Invalid JSON"
	msgReplayed              = "Order already completed (idempotent)"
)

// Checkouter runs a checkout.
type Checkouter interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

// CheckoutHandler handles POST /checkout.
type CheckoutHandler struct {
	checkout Checkouter
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout Checkouter) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	IdempotencyKey  string           `json:"idempotencyKey"`
	Cart            json.RawMessage  `json:"cart"`
	ShippingState   string           `json:"shippingState"`
	Email           string           `json:"email"`
	PaymentNonce    string           `json:"paymentNonce"`
	ShippingAddress *catalog.Address `json:"shippingAddress"`
	OrderNote       string           `json:"orderNote"`
}

type checkoutResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ServeHTTP handles POST /checkout
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Info("checkout body rejected", "error", err)
		handler.ErrorMessageResponse(w, r, http.StatusBadRequest, msgInvalidJSON, nil)
		return
	}

	cart, err := decodeCart(body.Cart)
	if err != nil {
		handler.ErrorMessageResponse(w, r, http.StatusBadRequest, msgInvalidJSON, err)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		IdempotencyKey:  body.IdempotencyKey,
		Cart:            cart,
		ShippingState:   body.ShippingState,
		Email:           strings.TrimSpace(body.Email),
		PaymentNonce:    body.PaymentNonce,
		ShippingAddress: body.ShippingAddress,
		OrderNote:       body.OrderNote,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutNotConfigured):
			handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, msgCheckoutNotConfigured, err)
		case domain.ErrorCode(err) == domain.EINVALID:
			handler.ErrorResponse(w, r, err)
		default:
			handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, msgCheckoutFailed, err)
		}
		return
	}

	resp := checkoutResponse{
		Success:   true,
		OrderID:   result.OrderID,
		PaymentID: result.PaymentID,
	}
	if result.Replayed {
		resp.Message = msgReplayed
	}

	logger.Info("checkout completed", "order_id", result.OrderID, "replayed", result.Replayed)
	handler.WriteJSON(w, r, http.StatusOK, resp)
}

// decodeCart returns nil when the cart is absent or not an array, so the
// service reports it as a missing field.
func decodeCart(raw json.RawMessage) ([]domain.CartLineInput, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	cart := []domain.CartLineInput{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}
