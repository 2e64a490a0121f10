package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

// SquareSignatureHeader carries the webhook HMAC.
const SquareSignatureHeader = "x-square-hmacsha256-signature"

// Known Square webhook event types.
const (
	EventInventoryUpdated = "inventory.updated"
	EventOrderCreated     = "order.created"
	EventPaymentUpdated   = "payment.updated"
)

// WebhookEvent is the part of a Square notification the service reads.
type WebhookEvent struct {
	Type       string `json:"type"`
	MerchantID string `json:"merchant_id"`
	EventID    string `json:"event_id"`
	Data       struct {
		Type   string          `json:"type"`
		ID     string          `json:"id"`
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// WebhookHandlerFunc processes one verified event.
type WebhookHandlerFunc func(ctx context.Context, event WebhookEvent) error

// WebhookConfig configures signature verification.
type WebhookConfig struct {
	SignatureKey string
	// NotificationURL is the exact URL registered with Square.
	NotificationURL string
}

// WebhookService verifies, logs and dispatches Square webhooks.
type WebhookService struct {
	cfg      WebhookConfig
	logs     domain.WebhookLogStore
	handlers map[string]WebhookHandlerFunc
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

// NewWebhookService creates a WebhookService. Known event types are
// acknowledged without further work until a handler is registered with Handle.
func NewWebhookService(cfg WebhookConfig, logs domain.WebhookLogStore, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WebhookService{
		cfg:      cfg,
		logs:     logs,
		handlers: make(map[string]WebhookHandlerFunc),
		metrics:  metrics,
		logger:   logger,
	}
	s.handlers[EventPaymentUpdated] = s.logPaymentUpdate
	return s
}

// Handle registers fn for eventType, replacing any previous handler.
func (s *WebhookService) Handle(eventType string, fn WebhookHandlerFunc) {
	s.handlers[eventType] = fn
}

// Sign returns the base64 HMAC-SHA256 of notificationURL+body under key.
func Sign(key, notificationURL string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body.
func (s *WebhookService) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(s.cfg.SignatureKey, s.cfg.NotificationURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Process handles one delivery. Every delivery is logged; the log row is
// marked processed once the event has been handled.
func (s *WebhookService) Process(ctx context.Context, body []byte, signature string) error {
	payload := json.RawMessage(`{}`)
	if json.Valid(body) && len(body) > 0 {
		payload = json.RawMessage(body)
	}

	if s.cfg.SignatureKey == "" || s.cfg.NotificationURL == "" {
		s.logger.Error("webhook signature key or notification url missing")
		msg := "Configuration error"
		s.insertLog(ctx, domain.WebhookLog{EventType: "unknown", Payload: payload, ErrorMessage: &msg})
		s.metrics.RecordWebhookFailure("misconfigured")
		return ErrWebhookMisconfigured
	}

	valid := s.VerifySignature(body, signature)

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		event = WebhookEvent{}
	}
	if event.Type == "" {
		event.Type = "unknown"
	}

	logID := s.insertLog(ctx, domain.WebhookLog{
		EventType:      event.Type,
		Payload:        payload,
		SignatureValid: valid,
	})

	if !valid {
		s.logger.Warn("webhook signature invalid", "event_type", event.Type)
		s.metrics.RecordWebhookFailure("invalid_signature")
		return ErrInvalidSignature
	}
	s.metrics.RecordWebhook(event.Type)

	if err := s.dispatch(ctx, event); err != nil {
		s.logger.Error("webhook processing failed", "event_type", event.Type, "event_id", event.EventID, "error", err)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"event_type": event.Type})
		s.metrics.RecordWebhookFailure("processing")
		msg := err.Error()
		s.markProcessed(ctx, logID, false, &msg)
		return ErrWebhookProcessing
	}

	s.markProcessed(ctx, logID, true, nil)
	return nil
}

func (s *WebhookService) dispatch(ctx context.Context, event WebhookEvent) (err error) {
	fn, ok := s.handlers[event.Type]
	if !ok {
		s.logger.Debug("webhook acknowledged", "event_type", event.Type)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webhook handler panic: %v", r)
		}
	}()
	return fn(ctx, event)
}

func (s *WebhookService) logPaymentUpdate(_ context.Context, event WebhookEvent) error {
	var obj struct {
		Payment struct {
			ID      string `json:"id"`
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"payment"`
	}
	if len(event.Data.Object) > 0 {
		if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
			return fmt.Errorf("decode payment object: %w", err)
		}
	}
	s.logger.Info("payment updated",
		"payment_id", obj.Payment.ID,
		"order_id", obj.Payment.OrderID,
		"status", obj.Payment.Status,
	)
	return nil
}

// insertLog writes a webhook log row and returns its id, or "" on failure.
func (s *WebhookService) insertLog(ctx context.Context, log domain.WebhookLog) string {
	if s.logs == nil {
		return ""
	}
	id, err := s.logs.InsertWebhookLog(context.WithoutCancel(ctx), log)
	if err != nil {
		s.logger.Error("webhook log insert failed", "event_type", log.EventType, "error", err)
		return ""
	}
	return id
}

func (s *WebhookService) markProcessed(ctx context.Context, id string, processed bool, errMsg *string) {
	if s.logs == nil || id == "" {
		return
	}
	if err := s.logs.MarkWebhookProcessed(context.WithoutCancel(ctx), id, processed, errMsg); err != nil {
		s.logger.Error("webhook log update failed", "id", id, "error", err)
	}
}
