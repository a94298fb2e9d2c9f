package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAlertSender is a mock implementation of port.AlertSender.
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendPriceReviewAlert(ctx context.Context, scanID uuid.UUID, discrepancyCount int) error {
	args := m.Called(ctx, scanID, discrepancyCount)
	return args.Error(0)
}
