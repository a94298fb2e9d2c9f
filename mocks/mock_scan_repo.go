package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shelfscan/internal/domain"
)

// MockScanRepo is a mock implementation of port.ScanRepository.
type MockScanRepo struct {
	mock.Mock
}

func (m *MockScanRepo) Create(ctx context.Context, scan *domain.Scan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanRepo) Update(ctx context.Context, scan *domain.Scan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Scan, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Scan), args.Error(1)
}
