package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shelfscan/internal/domain"
)

// MockProductRepo is a mock implementation of port.ProductRepository.
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) UpsertBatch(ctx context.Context, products []domain.CanonicalProduct) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepo) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*domain.CanonicalProduct, error) {
	args := m.Called(ctx, catalogNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalProduct), args.Error(1)
}

func (m *MockProductRepo) UnitPricesByCatalog(ctx context.Context, catalogNumbers []string) (map[string]float64, error) {
	args := m.Called(ctx, catalogNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockProductRepo) List(ctx context.Context, offset, limit int) ([]domain.CanonicalProduct, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CanonicalProduct), args.Int(1), args.Error(2)
}
