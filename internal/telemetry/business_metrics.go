package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcomes recorded by RecordCheckout.
const (
	CheckoutCompleted       = "completed"
	CheckoutReplayed        = "replayed"
	CheckoutPaymentFailed   = "payment_failed"
	CheckoutRetryRejected   = "retry_rejected"
	CheckoutInvalidCart     = "invalid_cart"
	CheckoutShippingBlocked = "shipping_blocked"
	CheckoutOrderRejected   = "order_rejected"
	CheckoutError           = "error"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
// Every Record method is safe to call on a nil receiver.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutOutcomes *prometheus.CounterVec
	OrderValue       prometheus.Histogram
	PaymentDeclines  *prometheus.CounterVec

	// Shipping
	ShippingQuotes *prometheus.CounterVec

	// Email delivery
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec

	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookFailed   *prometheus.CounterVec

	// Rate limiting
	RateLimited *prometheus.CounterVec

	// Order events
	EventsPublished *prometheus.CounterVec

	// External API performance
	ProviderLatency *prometheus.HistogramVec
}

// NewBusinessMetrics creates business metrics registered with reg.
// A nil reg uses the default registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "storefront"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	subsystem := "business"

	return &BusinessMetrics{
		// =======================================================================
		// Checkout Funnel
		// =======================================================================
		CheckoutOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_outcomes_total",
				Help:      "Checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_dollars",
				Help:      "Grand total of completed orders in dollars",
				Buckets:   []float64{10, 25, 50, 75, 100, 150, 250, 500},
			},
		),
		PaymentDeclines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_declines_total",
				Help:      "Payments the provider did not complete, by status",
			},
			[]string{"status"},
		),

		// =======================================================================
		// Shipping
		// =======================================================================
		ShippingQuotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shipping_quotes_total",
				Help:      "Shipping quotes by result",
			},
			[]string{"result"}, // result: allowed, blocked, error
		),

		// =======================================================================
		// Email Delivery
		// =======================================================================
		EmailSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_sent_total",
				Help:      "Total emails sent by type",
			},
			[]string{"email_type"},
		),
		EmailFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_failed_total",
				Help:      "Total email delivery failures after retries",
			},
			[]string{"email_type"},
		),

		// =======================================================================
		// Webhooks
		// =======================================================================
		WebhookReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_received_total",
				Help:      "Provider webhooks received by event type",
			},
			[]string{"event_type"},
		),
		WebhookFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhooks_failed_total",
				Help:      "Provider webhooks rejected or not processed",
			},
			[]string{"reason"}, // reason: misconfigured, invalid_signature, processing
		),

		// =======================================================================
		// Rate Limiting
		// =======================================================================
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),

		// =======================================================================
		// Order Events
		// =======================================================================
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_events_total",
				Help:      "Order events published by type and result",
			},
			[]string{"event_type", "result"},
		),

		// =======================================================================
		// External API Performance
		// =======================================================================
		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_api_duration_seconds",
				Help:      "Catalog/payment provider call duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"}, // operation: list_catalog, create_order, create_payment
		),
	}
}

// RecordCheckout counts one checkout outcome.
func (m *BusinessMetrics) RecordCheckout(outcome string) {
	if m == nil {
		return
	}
	m.CheckoutOutcomes.WithLabelValues(outcome).Inc()
}

// RecordOrderValue observes a completed order's grand total in cents.
func (m *BusinessMetrics) RecordOrderValue(cents int64) {
	if m == nil {
		return
	}
	m.OrderValue.Observe(float64(cents) / 100)
}

// RecordPaymentDecline counts a payment that did not complete.
func (m *BusinessMetrics) RecordPaymentDecline(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.PaymentDeclines.WithLabelValues(status).Inc()
}

// RecordShippingQuote counts a quote result: allowed, blocked or error.
func (m *BusinessMetrics) RecordShippingQuote(result string) {
	if m == nil {
		return
	}
	m.ShippingQuotes.WithLabelValues(result).Inc()
}

// RecordEmail counts a final email outcome.
func (m *BusinessMetrics) RecordEmail(emailType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EmailFailed.WithLabelValues(emailType).Inc()
		return
	}
	m.EmailSent.WithLabelValues(emailType).Inc()
}

// RecordWebhook counts a received webhook.
func (m *BusinessMetrics) RecordWebhook(eventType string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.WebhookReceived.WithLabelValues(eventType).Inc()
}

// RecordWebhookFailure counts a rejected or failed webhook.
func (m *BusinessMetrics) RecordWebhookFailure(reason string) {
	if m == nil {
		return
	}
	m.WebhookFailed.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts a rate-limited request.
func (m *BusinessMetrics) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

// RecordEvent counts a published order event.
func (m *BusinessMetrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

// ObserveProvider records how long a provider call took.
func (m *BusinessMetrics) ObserveProvider(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ProviderLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Global instance for easy access from handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, nil)
	return Business
}
