package domain

import (
	"context"
	"time"
)

// OrderAttemptStatus is the lifecycle state of a checkout attempt.
type OrderAttemptStatus string

const (
	OrderAttemptPending       OrderAttemptStatus = "pending"
	OrderAttemptCompleted     OrderAttemptStatus = "completed"
	OrderAttemptPaymentFailed OrderAttemptStatus = "payment_failed"
	OrderAttemptCancelled     OrderAttemptStatus = "cancelled"
)

// Order attempt errors.
var (
	ErrOrderAttemptNotFound = &Error{Code: ENOTFOUND, Message: "Order attempt not found"}
	ErrDuplicateIdempotency = &Error{Code: ECONFLICT, Message: "An order attempt with this idempotency key already exists"}
)

// OrderAttempt is the durable record of one checkout attempt, keyed by the
// client-supplied idempotency key.
type OrderAttempt struct {
	ID                string             `json:"id"`
	SquareOrderID     string             `json:"square_order_id"`
	SquarePaymentID   *string            `json:"square_payment_id"`
	IdempotencyKey    string             `json:"idempotency_key"`
	Email             string             `json:"email"`
	ShippingState     string             `json:"shipping_state"`
	ShippingBreakdown ShippingBreakdown  `json:"shipping_breakdown"`
	AmountTotalCents  int64              `json:"amount_total_cents"`
	Currency          string             `json:"currency"`
	Status            OrderAttemptStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// OrderAttemptStore is the order metadata store. Idempotency keys are unique;
// a second Create with the same key returns ErrDuplicateIdempotency.
type OrderAttemptStore interface {
	GetByIdempotencyKey(ctx context.Context, key string) (*OrderAttempt, error)
	Create(ctx context.Context, attempt *OrderAttempt) error
	ListRecent(ctx context.Context, limit int) ([]OrderAttempt, error)
}
