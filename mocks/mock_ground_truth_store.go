package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGroundTruthStore is a mock implementation of port.GroundTruthStore.
type MockGroundTruthStore struct {
	mock.Mock
}

func (m *MockGroundTruthStore) Lookup(ctx context.Context, documentID string) (string, bool, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Bool(1), args.Error(2)
}
