package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shelfscan/internal/domain"
	"shelfscan/internal/service"
)

// MockScanService is a mock implementation of service.ScanService.
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Upload(ctx context.Context, invoiceDataURI string) (*domain.Scan, error) {
	args := m.Called(ctx, invoiceDataURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanService) ExtractHeader(ctx context.Context, invoiceDataURI string) (*domain.InvoiceSummary, error) {
	args := m.Called(ctx, invoiceDataURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceSummary), args.Error(1)
}

func (m *MockScanService) ProcessScan(ctx context.Context, scan *domain.Scan) {
	m.Called(ctx, scan)
}

func (m *MockScanService) Resolve(ctx context.Context, id uuid.UUID, req service.ResolveRequest) (*domain.Scan, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}
