package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"shelfscan/internal/port"
)

// MockVisionExtractor is a mock implementation of port.VisionExtractor.
type MockVisionExtractor struct {
	mock.Mock
}

func (m *MockVisionExtractor) Extract(ctx context.Context, input port.ExtractInput) (json.RawMessage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
