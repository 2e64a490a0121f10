package catalog

import (
	"context"
	"sync"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// MockProvider is a Provider for service and handler tests.
type MockProvider struct {
	mu sync.Mutex

	Lines      []domain.CatalogLine
	ListErr    error
	Order      *OrderResult
	OrderErr   error
	Payment    *PaymentResult
	PaymentErr error
	Created    *CreatedItem
	CreateErr  error
	DeleteErr  error

	ListCalls    int
	OrderCalls   []OrderRequest
	PaymentCalls []PaymentRequest
	ItemCalls    []ItemInput
	DeleteCalls  [][2]string
}

func (m *MockProvider) ListCatalog(context.Context) ([]domain.CatalogLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	return m.Lines, m.ListErr
}

func (m *MockProvider) CreateOrder(_ context.Context, req OrderRequest) (*OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderCalls = append(m.OrderCalls, req)
	return m.Order, m.OrderErr
}

func (m *MockProvider) CreatePayment(_ context.Context, req PaymentRequest) (*PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentCalls = append(m.PaymentCalls, req)
	return m.Payment, m.PaymentErr
}

func (m *MockProvider) CreateItem(_ context.Context, in ItemInput) (*CreatedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemCalls = append(m.ItemCalls, in)
	return m.Created, m.CreateErr
}

func (m *MockProvider) DeleteItem(_ context.Context, itemID, variationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, [2]string{itemID, variationID})
	return m.DeleteErr
}
