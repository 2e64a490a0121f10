package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordCheckout(CheckoutCompleted)
		m.RecordOrderValue(4400)
		m.RecordPaymentDecline("FAILED")
		m.RecordShippingQuote("allowed")
		m.RecordEmail("order_confirmation", nil)
		m.RecordWebhook("payment.updated")
		m.RecordWebhookFailure("invalid_signature")
		m.RecordRateLimited("/checkout")
		m.RecordEvent("order.completed", nil)
		m.ObserveProvider("create_order", time.Now())
	})
}

func TestBusinessMetrics_Record(t *testing.T) {
	m := NewBusinessMetrics("test", prometheus.NewRegistry())

	m.RecordCheckout(CheckoutCompleted)
	m.RecordCheckout(CheckoutCompleted)
	m.RecordCheckout(CheckoutPaymentFailed)
	m.RecordEmail("payment_failed", errors.New("smtp down"))
	m.RecordEmail("payment_failed", nil)
	m.RecordPaymentDecline("")
	m.RecordEvent("order.completed", errors.New("nats down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CheckoutOutcomes.WithLabelValues(CheckoutCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutOutcomes.WithLabelValues(CheckoutPaymentFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailFailed.WithLabelValues("payment_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailSent.WithLabelValues("payment_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentDeclines.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.completed", "error")))
}
