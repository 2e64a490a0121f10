package shipping

import (
	"context"
	"fmt"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// MerchFlatFeeCents is charged once for any cart containing merchandise.
const MerchFlatFeeCents int64 = 1200

// Calculator turns a cart and a destination state into a shipping quote.
type Calculator interface {
	Calculate(ctx context.Context, items []domain.ShippingItem, state string) (domain.ShippingBreakdown, error)
}

// Request is the partitioned view of a cart handed to each Strategy.
type Request struct {
	State            string
	IceCreamPackages int64
	HasMerch         bool
	HasFrozen        bool
}

// Strategy prices carts that contain ice cream.
// Quote returns handled=false when the strategy does not cover the request,
// letting the next strategy in the chain try.
type Strategy interface {
	Name() string
	Quote(ctx context.Context, req Request) (breakdown domain.ShippingBreakdown, handled bool, err error)
}

// Engine chains strategies: the first one that handles a request wins.
type Engine struct {
	strategies []Strategy
}

// NewEngine creates a shipping engine trying strategies in order.
func NewEngine(strategies ...Strategy) (*Engine, error) {
	if len(strategies) == 0 {
		return nil, ErrNoStrategies
	}
	return &Engine{strategies: strategies}, nil
}

// NormalizeState trims, uppercases and truncates a state to two letters.
func NormalizeState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if len(s) > 2 {
		s = s[:2]
	}
	return s
}

// Partition splits items into the ice-cream package count and merch/frozen flags.
// Items with a non-positive quantity are ignored.
func Partition(items []domain.ShippingItem, state string) Request {
	req := Request{State: NormalizeState(state)}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if item.IsMerch {
			req.HasMerch = true
		} else {
			req.IceCreamPackages += item.Quantity
		}
		if item.IsFrozen {
			req.HasFrozen = true
		}
	}
	return req
}

// Calculate prices a cart for a destination state.
func (e *Engine) Calculate(ctx context.Context, items []domain.ShippingItem, state string) (domain.ShippingBreakdown, error) {
	req := Partition(items, state)
	if req.State == "" {
		return domain.ShippingBreakdown{}, ErrStateRequired
	}

	if req.IceCreamPackages == 0 {
		if req.HasMerch {
			return merchOnly(), nil
		}
		return domain.Blocked("No shippable items in cart."), nil
	}

	for _, s := range e.strategies {
		breakdown, handled, err := s.Quote(ctx, req)
		if err != nil {
			return domain.ShippingBreakdown{}, fmt.Errorf("%s strategy: %w", s.Name(), err)
		}
		if handled {
			return breakdown, nil
		}
	}

	return domain.Blocked(fmt.Sprintf("No shipping available for state %s.", req.State)), nil
}

// merchOnly is the flat quote for carts without ice cream.
func merchOnly() domain.ShippingBreakdown {
	return domain.ShippingBreakdown{
		Allowed:  true,
		Subtotal: MerchFlatFeeCents,
		Total:    MerchFlatFeeCents,
		Currency: domain.DefaultCurrency,
	}
}

// merchFee returns the flat fee added to mixed carts.
func merchFee(req Request) int64 {
	if req.HasMerch {
		return MerchFlatFeeCents
	}
	return 0
}
