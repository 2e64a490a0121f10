package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEvent_Marshal(t *testing.T) {
	event := OrderEvent{
		Type:          OrderCompleted,
		OrderID:       "ORD-1",
		PaymentID:     "PAY-1",
		Email:         "buyer@example.com",
		ShippingState: "OR",
		AmountCents:   5400,
		Currency:      "USD",
	}

	data, err := event.marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "order.completed", decoded["type"])
	assert.Equal(t, "ORD-1", decoded["order_id"])
	assert.Equal(t, float64(5400), decoded["amount_cents"])
	assert.NotEmpty(t, decoded["occurred_at"])
	assert.NotContains(t, decoded, "reason")
}

func TestOrderEvent_MarshalKeepsTimestamp(t *testing.T) {
	at := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	data, err := OrderEvent{Type: OrderPaymentFailed, OccurredAt: at}.marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"occurred_at":"2026-07-04T12:00:00Z"`)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{Type: OrderCompleted}))
	assert.NoError(t, p.Close())
}

func TestNATSPublisher_Subject(t *testing.T) {
	p := &NATSPublisher{prefix: "shop"}
	assert.Equal(t, "shop.order.completed", p.Subject(OrderCompleted))
}

func TestMockPublisher_Records(t *testing.T) {
	m := &MockPublisher{}
	require.NoError(t, m.Publish(context.Background(), OrderEvent{Type: OrderCompleted, OrderID: "A"}))
	require.Len(t, m.Events, 1)
	assert.Equal(t, "A", m.Events[0].OrderID)
}
