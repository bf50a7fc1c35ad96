package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// GroundTruthRepo serves ground truths from the ground_truths table.
// It implements port.GroundTruthStore; misses are not errors.
type GroundTruthRepo struct {
	db *sqlx.DB
}

// NewGroundTruthRepo creates a new PostgreSQL-backed ground-truth store.
func NewGroundTruthRepo(db *sqlx.DB) *GroundTruthRepo {
	return &GroundTruthRepo{db: db}
}

func (r *GroundTruthRepo) Lookup(ctx context.Context, documentID string) (string, bool, error) {
	var canonical string
	err := r.db.GetContext(ctx, &canonical,
		"SELECT canonical_json FROM ground_truths WHERE document_id = $1", documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("groundTruthRepo.Lookup: %w", err)
	}
	return canonical, true, nil
}

// Upsert inserts or replaces the ground truth for a document. Used by seeding.
func (r *GroundTruthRepo) Upsert(ctx context.Context, documentID, canonicalJSON string) error {
	now := time.Now().UTC()
	query := `INSERT INTO ground_truths (document_id, canonical_json, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (document_id)
		DO UPDATE SET canonical_json = EXCLUDED.canonical_json, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, documentID, canonicalJSON, now); err != nil {
		return fmt.Errorf("groundTruthRepo.Upsert: %w", err)
	}
	return nil
}
