package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// OrderStore implements domain.OrderAttemptStore over the order_metadata table.
type OrderStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure OrderStore implements domain.OrderAttemptStore.
var _ domain.OrderAttemptStore = (*OrderStore)(nil)

// NewOrderStore creates a new OrderStore.
func NewOrderStore(p *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: p}
}

const orderColumns = `id::text, square_order_id, square_payment_id, idempotency_key, email,
       shipping_state, shipping_breakdown, amount_total_cents, currency, status,
       created_at, updated_at`

// GetByIdempotencyKey returns the attempt recorded for key.
func (s *OrderStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.OrderAttempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM order_metadata WHERE idempotency_key = $1`, key)

	attempt, err := scanOrderAttempt(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderAttemptNotFound
		}
		return nil, domain.Internal(err, "order_attempt.get", "failed to load order attempt")
	}
	return attempt, nil
}

// Create inserts attempt and fills in its id and timestamps.
// A duplicate idempotency key returns domain.ErrDuplicateIdempotency.
func (s *OrderStore) Create(ctx context.Context, attempt *domain.OrderAttempt) error {
	const q = `
INSERT INTO order_metadata (
    square_order_id, square_payment_id, idempotency_key, email, shipping_state,
    shipping_breakdown, amount_total_cents, currency, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text, created_at, updated_at
`
	breakdown, err := json.Marshal(attempt.ShippingBreakdown)
	if err != nil {
		return domain.Internal(err, "order_attempt.create", "failed to encode shipping breakdown")
	}

	status := attempt.Status
	if status == "" {
		status = domain.OrderAttemptPending
	}

	err = s.pool.QueryRow(ctx, q,
		attempt.SquareOrderID,
		attempt.SquarePaymentID,
		attempt.IdempotencyKey,
		attempt.Email,
		attempt.ShippingState,
		breakdown,
		attempt.AmountTotalCents,
		attempt.Currency,
		string(status),
	).Scan(&attempt.ID, &attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.ErrDuplicateIdempotency
		}
		return mapWriteError(err, "order_attempt.create", "order attempt")
	}

	attempt.Status = status
	return nil
}

// ListRecent returns the newest attempts first.
func (s *OrderStore) ListRecent(ctx context.Context, limit int) ([]domain.OrderAttempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM order_metadata ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, domain.Internal(err, "order_attempt.list", "failed to list orders")
	}

	attempts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderAttempt, error) {
		a, err := scanOrderAttempt(row)
		if err != nil {
			return domain.OrderAttempt{}, err
		}
		return *a, nil
	})
	if err != nil {
		return nil, domain.Internal(err, "order_attempt.list", "failed to list orders")
	}
	return attempts, nil
}

func scanOrderAttempt(row pgx.Row) (*domain.OrderAttempt, error) {
	var (
		a         domain.OrderAttempt
		breakdown []byte
		status    string
	)
	if err := row.Scan(
		&a.ID,
		&a.SquareOrderID,
		&a.SquarePaymentID,
		&a.IdempotencyKey,
		&a.Email,
		&a.ShippingState,
		&breakdown,
		&a.AmountTotalCents,
		&a.Currency,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &a.ShippingBreakdown); err != nil {
			return nil, err
		}
	}
	a.Status = domain.OrderAttemptStatus(status)
	return &a, nil
}
