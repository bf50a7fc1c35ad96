package port

import (
	"context"

	"github.com/google/uuid"

	"scanscore/internal/domain"
)

// EvaluationRepository persists evaluation runs.
type EvaluationRepository interface {
	Create(ctx context.Context, e *domain.Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)
	ListByDocumentID(ctx context.Context, documentID string, limit, offset int) ([]domain.Evaluation, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.Evaluation, error)
}
