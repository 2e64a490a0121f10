package email

import "github.com/Fletcher15478/Ecomm/internal/domain"

// Template types recorded in email_logs.
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateNewOrder          = "new_order_notification"
	TemplatePaymentFailed     = "payment_failed"
)

// EmailTemplate defines the interface for email templates
type EmailTemplate interface {
	Subject() string
	TemplateName() string
	TemplateType() string
}

// OrderLine is one purchased line as shown in an email.
type OrderLine struct {
	Name       string
	Quantity   int64
	PriceCents int64
	TotalCents int64
	Note       string
}

// LinesFromCart converts validated cart items for display.
func LinesFromCart(items []domain.CartLineItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.BasePriceAmount,
			TotalCents: item.LineTotal(),
			Note:       item.Note,
		})
	}
	return lines
}

// OrderConfirmationEmail is sent to the buyer after a successful payment.
type OrderConfirmationEmail struct {
	To              string
	OrderID         string
	OrderMetadataID string
	Items           []OrderLine
	SubtotalCents   int64
	Shipping        domain.ShippingBreakdown
	OrderNote       string
}

func (e OrderConfirmationEmail) Subject() string {
	return "Order Confirmation – " + e.OrderID
}

func (e OrderConfirmationEmail) TemplateName() string {
	return "order_confirmation.html"
}

func (e OrderConfirmationEmail) TemplateType() string {
	return TemplateOrderConfirmation
}

// GrandTotalCents is items plus shipping.
func (e OrderConfirmationEmail) GrandTotalCents() int64 {
	return e.SubtotalCents + e.Shipping.Total
}

// NewOrderNotificationEmail tells staff about a new paid order.
type NewOrderNotificationEmail struct {
	To              []string
	CustomerEmail   string
	OrderID         string
	OrderMetadataID string
	Items           []OrderLine
	SubtotalCents   int64
	Shipping        domain.ShippingBreakdown
	OrderNote       string
	AddressBlock    string
}

func (e NewOrderNotificationEmail) Subject() string {
	return "New order – " + e.OrderID + " (" + e.CustomerEmail + ")"
}

func (e NewOrderNotificationEmail) TemplateName() string {
	return "new_order.html"
}

func (e NewOrderNotificationEmail) TemplateType() string {
	return TemplateNewOrder
}

// GrandTotalCents is items plus shipping.
func (e NewOrderNotificationEmail) GrandTotalCents() int64 {
	return e.SubtotalCents + e.Shipping.Total
}

// PaymentFailedEmail is sent to the buyer when a payment is declined.
type PaymentFailedEmail struct {
	To              string
	OrderID         string
	OrderMetadataID string
	Reason          string
}

func (e PaymentFailedEmail) Subject() string {
	return "Payment Failed – Order " + e.OrderID
}

func (e PaymentFailedEmail) TemplateName() string {
	return "payment_failed.html"
}

func (e PaymentFailedEmail) TemplateType() string {
	return TemplatePaymentFailed
}
