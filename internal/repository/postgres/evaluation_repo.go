package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanscore/internal/domain"
	"scanscore/internal/port"
)

type evaluationRepo struct {
	db *sqlx.DB
}

// NewEvaluationRepo creates a new PostgreSQL-backed EvaluationRepository.
func NewEvaluationRepo(db *sqlx.DB) port.EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Create(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == (uuid.UUID{}) {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO evaluations
		(id, document_id, document_type, extracted_json, raw_text,
		 ser, refined_ser, ppl, cer, strict_field_accuracy, fuzzy_field_accuracy,
		 scored_against_reference, status, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.DocumentID, e.DocumentType, e.ExtractedJSON, e.RawText,
		e.SER, e.RefinedSER, e.Perplexity, e.CER, e.StrictFieldAccuracy, e.FuzzyFieldAccuracy,
		e.ScoredAgainstReference, e.Status, e.FailureReason, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("evaluationRepo.Create: %w", err)
	}
	return nil
}

func (r *evaluationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	var e domain.Evaluation
	err := r.db.GetContext(ctx, &e, "SELECT * FROM evaluations WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("evaluationRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *evaluationRepo) ListByDocumentID(ctx context.Context, documentID string, limit, offset int) ([]domain.Evaluation, error) {
	var evals []domain.Evaluation
	err := r.db.SelectContext(ctx, &evals,
		`SELECT * FROM evaluations
		 WHERE document_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		documentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("evaluationRepo.ListByDocumentID: %w", err)
	}
	return evals, nil
}

func (r *evaluationRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Evaluation, error) {
	var evals []domain.Evaluation
	err := r.db.SelectContext(ctx, &evals,
		"SELECT * FROM evaluations ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("evaluationRepo.ListRecent: %w", err)
	}
	return evals, nil
}
