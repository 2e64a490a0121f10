// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	OrderCompleted     = "order.completed"
	OrderPaymentFailed = "order.payment_failed"
)

// OrderEvent describes a finished checkout attempt.
type OrderEvent struct {
	Type            string    `json:"type"`
	OrderID         string    `json:"order_id"`
	PaymentID       string    `json:"payment_id,omitempty"`
	OrderMetadataID string    `json:"order_metadata_id,omitempty"`
	IdempotencyKey  string    `json:"idempotency_key"`
	Email           string    `json:"email"`
	ShippingState   string    `json:"shipping_state"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	Reason          string    `json:"reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Key orders events of one order on a partition.
func (e OrderEvent) Key() string {
	return e.OrderID
}

func (e OrderEvent) marshal() ([]byte, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}
	return data, nil
}

// Publisher sends order events. Publishing is best effort; callers log
// failures and never fail a checkout because of them.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
