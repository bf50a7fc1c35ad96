package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scanscore/internal/domain"
)

// MockEvaluationRepo is a mock implementation of port.EvaluationRepository.
type MockEvaluationRepo struct {
	mock.Mock
}

func (m *MockEvaluationRepo) Create(ctx context.Context, e *domain.Evaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepo) ListByDocumentID(ctx context.Context, documentID string, limit, offset int) ([]domain.Evaluation, error) {
	args := m.Called(ctx, documentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Evaluation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Evaluation), args.Error(1)
}
