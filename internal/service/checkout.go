package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Fletcher15478/Ecomm/internal/cart"
	"github.com/Fletcher15478/Ecomm/internal/catalog"
	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/email"
	"github.com/Fletcher15478/Ecomm/internal/events"
	"github.com/Fletcher15478/Ecomm/internal/shipping"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

// DefaultOrderNotifyEmail receives staff notifications when none are configured.
const DefaultOrderNotifyEmail = "support@millieshomemade.com"

// Notifier sends the transactional emails of a checkout.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, data email.OrderConfirmationEmail) error
	SendNewOrderNotification(ctx context.Context, data email.NewOrderNotificationEmail) error
	SendPaymentFailed(ctx context.Context, data email.PaymentFailedEmail) error
}

// CheckoutRequest is a buyer's checkout submission.
// A nil Cart means the field was missing; an empty one is validated as empty.
type CheckoutRequest struct {
	IdempotencyKey  string
	Cart            []domain.CartLineInput
	ShippingState   string
	Email           string
	PaymentNonce    string
	ShippingAddress *catalog.Address
	OrderNote       string
}

// CheckoutResult is returned for a completed checkout, fresh or replayed.
type CheckoutResult struct {
	OrderID   string
	PaymentID string
	// Replayed is set when the idempotency key had already completed.
	Replayed bool
}

// CheckoutConfig holds checkout settings.
type CheckoutConfig struct {
	// NotifyEmails receive the new-order notification. Empty means DefaultOrderNotifyEmail.
	NotifyEmails []string
}

// CheckoutService runs the checkout pipeline: idempotency check, cart
// validation against the live catalog, shipping, provider order and payment,
// persistence, then notifications.
type CheckoutService struct {
	provider  catalog.Provider
	shipping  shipping.Calculator
	orders    domain.OrderAttemptStore
	notifier  Notifier
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
	notify    []string
	now       func() time.Time
}

// NewCheckoutService creates a CheckoutService. A nil provider makes every
// checkout fail with ErrCheckoutNotConfigured. publisher and metrics may be nil.
func NewCheckoutService(
	provider catalog.Provider,
	calculator shipping.Calculator,
	orders domain.OrderAttemptStore,
	notifier Notifier,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	cfg CheckoutConfig,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	notify := make([]string, 0, len(cfg.NotifyEmails))
	for _, addr := range cfg.NotifyEmails {
		if addr = strings.TrimSpace(addr); addr != "" {
			notify = append(notify, addr)
		}
	}
	if len(notify) == 0 {
		notify = []string{DefaultOrderNotifyEmail}
	}

	return &CheckoutService{
		provider:  provider,
		shipping:  calculator,
		orders:    orders,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		notify:    notify,
		now:       time.Now,
	}
}

// Checkout processes one checkout attempt.
//
// Errors with code EINVALID carry a buyer-facing message. Any other error
// means the checkout failed unexpectedly and its detail must not be shown.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.IdempotencyKey == "" ||
		req.Cart == nil ||
		strings.TrimSpace(req.ShippingState) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.PaymentNonce) == "" {
		return nil, ErrMissingCheckoutFields
	}

	if s.provider == nil {
		return nil, ErrCheckoutNotConfigured
	}

	// Idempotency: a completed key replays, a declined key is refused.
	existing, err := s.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.OrderAttemptCompleted:
			s.metrics.RecordCheckout(telemetry.CheckoutReplayed)
			return &CheckoutResult{OrderID: existing.SquareOrderID, Replayed: true}, nil
		case domain.OrderAttemptPaymentFailed:
			s.metrics.RecordCheckout(telemetry.CheckoutRetryRejected)
			return nil, ErrPreviousAttemptFailed
		}
	case errors.Is(err, domain.ErrOrderAttemptNotFound):
	default:
		return nil, s.fail(ctx, fmt.Errorf("idempotency lookup: %w", err))
	}

	// Catalog is read fresh for every attempt.
	start := s.now()
	catalogLines, err := s.provider.ListCatalog(ctx)
	s.metrics.ObserveProvider("list_catalog", start)
	if err != nil {
		if errors.Is(err, catalog.ErrNotConfigured) {
			return nil, ErrCheckoutNotConfigured
		}
		return nil, s.fail(ctx, fmt.Errorf("list catalog: %w", err))
	}

	lines, err := cart.Validate(req.Cart, catalogLines)
	if err != nil {
		s.metrics.RecordCheckout(telemetry.CheckoutInvalidCart)
		return nil, err
	}

	breakdown, err := s.shipping.Calculate(ctx, cart.ShippingItems(lines), req.ShippingState)
	if err != nil {
		if domain.IsCode(err, domain.EINVALID) {
			s.metrics.RecordCheckout(telemetry.CheckoutShippingBlocked)
			return nil, err
		}
		return nil, s.fail(ctx, fmt.Errorf("calculate shipping: %w", err))
	}
	if !breakdown.Allowed {
		s.metrics.RecordCheckout(telemetry.CheckoutShippingBlocked)
		if breakdown.BlockedReason == "" {
			return nil, ErrShippingNotAvailable
		}
		return nil, domain.Errorf(domain.EINVALID, "checkout.shipping", "%s", breakdown.BlockedReason)
	}

	subtotal := cart.Subtotal(lines)
	total := subtotal + breakdown.Total
	currency := breakdown.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	order, err := s.createOrder(ctx, req.IdempotencyKey, lines, breakdown.Total, currency)
	if err != nil {
		return nil, err
	}

	start = s.now()
	spanCtx, finish := telemetry.StartSpan(ctx, "checkout.payment", "create payment")
	payment, err := s.provider.CreatePayment(spanCtx, catalog.PaymentRequest{
		IdempotencyKey:  req.IdempotencyKey + "-payment",
		SourceID:        req.PaymentNonce,
		AmountCents:     total,
		Currency:        currency,
		OrderID:         order.OrderID,
		BuyerEmail:      req.Email,
		ShippingAddress: req.ShippingAddress,
	})
	finish()
	s.metrics.ObserveProvider("create_payment", start)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("create payment: %w", err))
	}

	// The charge is decided; its record must be written even if the
	// request is cancelled from here on.
	ctx = context.WithoutCancel(ctx)

	attempt := &domain.OrderAttempt{
		SquareOrderID:     order.OrderID,
		IdempotencyKey:    req.IdempotencyKey,
		Email:             req.Email,
		ShippingState:     strings.TrimSpace(req.ShippingState),
		ShippingBreakdown: breakdown,
		AmountTotalCents:  total,
		Currency:          currency,
	}
	if payment.PaymentID != "" {
		paymentID := payment.PaymentID
		attempt.SquarePaymentID = &paymentID
	}

	if !payment.Succeeded() {
		return nil, s.declined(ctx, attempt, payment)
	}

	attempt.Status = domain.OrderAttemptCompleted
	if err := s.orders.Create(ctx, attempt); err != nil {
		// The charge went through; the buyer still gets a success response.
		s.logger.Error("order metadata insert failed",
			"order_id", order.OrderID,
			"idempotency_key", req.IdempotencyKey,
			"error", err,
		)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"order_id": order.OrderID})
	}

	s.metrics.RecordCheckout(telemetry.CheckoutCompleted)
	s.metrics.RecordOrderValue(total)
	s.publish(ctx, events.OrderCompleted, attempt, "")

	s.sendOrderEmails(ctx, req, attempt, lines, subtotal)

	return &CheckoutResult{OrderID: order.OrderID, PaymentID: payment.PaymentID}, nil
}

// createOrder creates the provider order: one line per validated cart line
// and a shipping service charge.
func (s *CheckoutService) createOrder(ctx context.Context, key string, lines []domain.CartLineItem, shippingTotal int64, currency string) (*catalog.OrderResult, error) {
	orderLines := make([]catalog.OrderLine, 0, len(lines))
	for i, l := range lines {
		orderLines = append(orderLines, catalog.OrderLine{
			UID:            fmt.Sprintf("line-%d", i),
			Name:           l.Name,
			Quantity:       l.Quantity,
			VariationID:    l.VariationID,
			BasePriceCents: l.BasePriceAmount,
			Currency:       l.Currency,
			Note:           l.Note,
		})
	}

	start := s.now()
	spanCtx, finish := telemetry.StartSpan(ctx, "checkout.order", "create order")
	order, err := s.provider.CreateOrder(spanCtx, catalog.OrderRequest{
		IdempotencyKey: key + "-order",
		LineItems:      orderLines,
		ServiceCharges: []catalog.ServiceCharge{{
			UID:              "shipping",
			Name:             "Shipping",
			AmountCents:      shippingTotal,
			Currency:         currency,
			CalculationPhase: catalog.CalculationPhaseSubtotal,
		}},
	})
	finish()
	s.metrics.ObserveProvider("create_order", start)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("create order: %w", err))
	}

	if order == nil || order.OrderID == "" {
		// Nothing is persisted, so a retry with the same key redoes the attempt.
		s.metrics.RecordCheckout(telemetry.CheckoutOrderRejected)
		msg := msgCreateOrderFailed
		if order != nil {
			if details := catalog.JoinDetails(order.Errors); details != "" {
				msg = details
			}
		}
		return nil, domain.Errorf(domain.EINVALID, "checkout.order", "%s", msg)
	}
	return order, nil
}

// declined records a payment_failed attempt, tells the buyer, and returns
// the decline error.
func (s *CheckoutService) declined(ctx context.Context, attempt *domain.OrderAttempt, payment *catalog.PaymentResult) error {
	s.metrics.RecordCheckout(telemetry.CheckoutPaymentFailed)
	s.metrics.RecordPaymentDecline(payment.Status)

	attempt.Status = domain.OrderAttemptPaymentFailed
	if err := s.orders.Create(ctx, attempt); err != nil {
		s.logger.Error("payment_failed metadata insert failed",
			"order_id", attempt.SquareOrderID,
			"idempotency_key", attempt.IdempotencyKey,
			"error", err,
		)
	}

	reason := catalog.JoinDetails(payment.Errors)
	s.publish(ctx, events.OrderPaymentFailed, attempt, reason)

	if s.notifier != nil {
		err := s.notifier.SendPaymentFailed(context.WithoutCancel(ctx), email.PaymentFailedEmail{
			To:              attempt.Email,
			OrderID:         attempt.SquareOrderID,
			OrderMetadataID: attempt.ID,
			Reason:          reason,
		})
		s.metrics.RecordEmail(email.TemplatePaymentFailed, err)
		if err != nil {
			s.logger.Error("payment failed email failed", "order_id", attempt.SquareOrderID, "error", err)
		}
	}

	s.logger.Info("payment not completed",
		"order_id", attempt.SquareOrderID,
		"status", payment.Status,
		"reason", reason,
	)

	if reason == "" {
		reason = msgPaymentNotCompleted
	}
	return domain.Errorf(domain.EINVALID, "checkout.payment", "%s", reason)
}

// sendOrderEmails sends the buyer confirmation and the staff notification
// concurrently. Failures are logged only.
func (s *CheckoutService) sendOrderEmails(ctx context.Context, req CheckoutRequest, attempt *domain.OrderAttempt, lines []domain.CartLineItem, subtotal int64) {
	if s.notifier == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	summary := email.LinesFromCart(lines)
	note := strings.TrimSpace(req.OrderNote)

	var wg conc.WaitGroup
	wg.Go(func() {
		err := s.notifier.SendOrderConfirmation(ctx, email.OrderConfirmationEmail{
			To:              req.Email,
			OrderID:         attempt.SquareOrderID,
			OrderMetadataID: attempt.ID,
			Items:           summary,
			SubtotalCents:   subtotal,
			Shipping:        attempt.ShippingBreakdown,
			OrderNote:       note,
		})
		s.metrics.RecordEmail(email.TemplateOrderConfirmation, err)
		if err != nil {
			s.logger.Error("order confirmation email failed", "order_id", attempt.SquareOrderID, "error", err)
		}
	})
	wg.Go(func() {
		err := s.notifier.SendNewOrderNotification(ctx, email.NewOrderNotificationEmail{
			To:              s.notify,
			CustomerEmail:   req.Email,
			OrderID:         attempt.SquareOrderID,
			OrderMetadataID: attempt.ID,
			Items:           summary,
			SubtotalCents:   subtotal,
			Shipping:        attempt.ShippingBreakdown,
			OrderNote:       note,
			AddressBlock:    req.ShippingAddress.Block(),
		})
		s.metrics.RecordEmail(email.TemplateNewOrder, err)
		if err != nil {
			s.logger.Error("new order notification failed", "order_id", attempt.SquareOrderID, "error", err)
		}
	})
	wg.Wait()
}

func (s *CheckoutService) publish(ctx context.Context, eventType string, attempt *domain.OrderAttempt, reason string) {
	event := events.OrderEvent{
		Type:            eventType,
		OrderID:         attempt.SquareOrderID,
		OrderMetadataID: attempt.ID,
		IdempotencyKey:  attempt.IdempotencyKey,
		Email:           attempt.Email,
		ShippingState:   attempt.ShippingState,
		AmountCents:     attempt.AmountTotalCents,
		Currency:        attempt.Currency,
		Reason:          reason,
		OccurredAt:      s.now().UTC(),
	}
	if attempt.SquarePaymentID != nil {
		event.PaymentID = *attempt.SquarePaymentID
	}

	err := s.publisher.Publish(context.WithoutCancel(ctx), event)
	s.metrics.RecordEvent(eventType, err)
	if err != nil {
		s.logger.Warn("order event publish failed", "type", eventType, "order_id", attempt.SquareOrderID, "error", err)
	}
}

// fail logs and reports an unexpected checkout error and wraps it as internal.
func (s *CheckoutService) fail(ctx context.Context, err error) error {
	s.metrics.RecordCheckout(telemetry.CheckoutError)
	s.logger.Error("checkout failed", "error", err)
	telemetry.CaptureErrorFromContext(ctx, err, nil)
	return domain.Internal(err, "checkout", "Checkout failed")
}
