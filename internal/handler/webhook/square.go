package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Fletcher15478/Ecomm/internal/handler"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/service"
)

// Processor verifies, logs and dispatches one provider webhook delivery.
type Processor interface {
	Process(ctx context.Context, body []byte, signature string) error
}

// SquareHandler handles Square webhook events
type SquareHandler struct {
	processor Processor
}

// NewSquareHandler creates a new Square webhook handler
func NewSquareHandler(processor Processor) *SquareHandler {
	return &SquareHandler{processor: processor}
}

// ServeHTTP handles POST /webhooks/square. The raw body is read before any
// parsing because the signature covers it byte for byte.
func (h *SquareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := middleware.GetLogger(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, middleware.WebhookMaxBodySize))
	if err != nil {
		logger.Warn("webhook body unreadable", "error", err)
		handler.ErrorMessageResponse(w, r, http.StatusBadRequest, "Error reading request body", nil)
		return
	}

	err = h.processor.Process(r.Context(), body, r.Header.Get(service.SquareSignatureHeader))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidSignature):
		handler.ErrorMessageResponse(w, r, http.StatusForbidden, "Invalid signature", nil)
		return
	case errors.Is(err, service.ErrWebhookMisconfigured):
		handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, "Server misconfiguration", err)
		return
	default:
		handler.ErrorMessageResponse(w, r, http.StatusInternalServerError, "Processing failed", err)
		return
	}

	logger.Info("webhook processed", "bytes", len(body), "duration", time.Since(start))
	handler.WriteJSON(w, r, http.StatusOK, map[string]bool{"received": true})
}
