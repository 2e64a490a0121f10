package shipping

import (
	"context"
	"sync"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// MockCalculator is a Calculator for handler and service tests.
type MockCalculator struct {
	mu sync.Mutex

	Breakdown domain.ShippingBreakdown
	Err       error

	Calls []MockCalculateCall
}

// MockCalculateCall records one Calculate invocation.
type MockCalculateCall struct {
	Items []domain.ShippingItem
	State string
}

// Calculate implements Calculator.
func (m *MockCalculator) Calculate(_ context.Context, items []domain.ShippingItem, state string) (domain.ShippingBreakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCalculateCall{Items: items, State: state})
	return m.Breakdown, m.Err
}

// StaticConfig is a ConfigLoader over a fixed configuration.
type StaticConfig struct {
	Config *domain.ShippingConfig
	Err    error
}

// LoadShippingConfig implements ConfigLoader.
func (s StaticConfig) LoadShippingConfig(context.Context) (*domain.ShippingConfig, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Config == nil {
		return &domain.ShippingConfig{}, nil
	}
	return s.Config, nil
}
