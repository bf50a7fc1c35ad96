package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"scanscore/internal/domain"
	"scanscore/internal/eval"
	"scanscore/internal/imaging"
	"scanscore/internal/port"
)

// EvaluationService runs the full extraction-and-scoring pipeline for a
// document and persists the outcome. Pipeline failures are persisted as
// failed runs so that batch reports account for every document.
type EvaluationService struct {
	storage    port.ObjectStorage
	bucket     string
	ocr        port.OCRProvider
	extractor  port.FieldExtractor
	evaluator  *eval.Evaluator
	repo       port.EvaluationRepository
	sizeBudget int
}

// NewEvaluationService creates an EvaluationService.
func NewEvaluationService(
	storage port.ObjectStorage,
	bucket string,
	ocr port.OCRProvider,
	extractor port.FieldExtractor,
	evaluator *eval.Evaluator,
	repo port.EvaluationRepository,
	sizeBudget int,
) *EvaluationService {
	if sizeBudget <= 0 {
		sizeBudget = imaging.DefaultSizeBudget
	}
	return &EvaluationService{
		storage:    storage,
		bucket:     bucket,
		ocr:        ocr,
		extractor:  extractor,
		evaluator:  evaluator,
		repo:       repo,
		sizeBudget: sizeBudget,
	}
}

// EvaluateCandidate scores an already-extracted candidate text against the
// ground truth for documentID and persists the run.
func (s *EvaluationService) EvaluateCandidate(ctx context.Context, candidateText, documentID string) (*domain.Evaluation, error) {
	result := s.evaluator.Evaluate(ctx, candidateText, documentID)
	evaluation := toEvaluation(&result, domain.EvaluationStatusCompleted, "")
	if err := s.repo.Create(ctx, evaluation); err != nil {
		return nil, fmt.Errorf("persisting evaluation for %q: %w", documentID, err)
	}
	return evaluation, nil
}

// ProcessDocument downloads the scan for documentID from object storage,
// runs OCR and field extraction, scores the result, and persists the run.
func (s *EvaluationService) ProcessDocument(ctx context.Context, documentID string, documentType domain.DocumentType) (*domain.Evaluation, error) {
	raw, err := s.storage.Download(ctx, s.bucket, documentID)
	if err != nil {
		return s.recordFailure(ctx, documentID, fmt.Errorf("downloading %q: %w", documentID, err))
	}
	return s.EvaluateImage(ctx, documentID, documentType, raw)
}

// EvaluateImage runs the pipeline on raw image bytes already in hand. The CLI
// uses this path for local files; ProcessDocument uses it after download.
func (s *EvaluationService) EvaluateImage(ctx context.Context, documentID string, documentType domain.DocumentType, raw []byte) (*domain.Evaluation, error) {
	payload, err := imaging.NormalizeBytes(raw, s.sizeBudget)
	if err != nil && !errors.Is(err, domain.ErrBudgetUnreachable) {
		return s.recordFailure(ctx, documentID, fmt.Errorf("normalizing %q: %w", documentID, err))
	}
	if errors.Is(err, domain.ErrBudgetUnreachable) {
		// The provider would reject an oversized payload anyway; fail here
		// with the size we actually reached.
		return s.recordFailure(ctx, documentID,
			fmt.Errorf("normalizing %q: %d bytes still over budget: %w", documentID, len(payload.Data), err))
	}

	rawText, err := s.ocr.RecognizeText(ctx, payload)
	if err != nil {
		return s.recordFailure(ctx, documentID, fmt.Errorf("recognizing text in %q: %w", documentID, err))
	}

	candidate, err := s.extractor.ExtractFields(ctx, rawText, documentType)
	if err != nil {
		return s.recordFailure(ctx, documentID, fmt.Errorf("extracting fields from %q: %w", documentID, err))
	}

	return s.EvaluateCandidate(ctx, candidate, documentID)
}

// GetEvaluation returns a persisted run by id.
func (s *EvaluationService) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	uid, err := parseEvaluationID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, uid)
}

// ListEvaluations returns persisted runs, optionally filtered by document id.
func (s *EvaluationService) ListEvaluations(ctx context.Context, documentID string, limit, offset int) ([]domain.Evaluation, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if documentID != "" {
		return s.repo.ListByDocumentID(ctx, documentID, limit, offset)
	}
	return s.repo.ListRecent(ctx, limit, offset)
}

func parseEvaluationID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("parsing evaluation id %q: %w", id, domain.ErrNotFound)
	}
	return uid, nil
}

// recordFailure persists a failed run and returns the original error.
func (s *EvaluationService) recordFailure(ctx context.Context, documentID string, cause error) (*domain.Evaluation, error) {
	evaluation := &domain.Evaluation{
		DocumentID:    documentID,
		DocumentType:  string(domain.DocumentTypeUnknown),
		ExtractedJSON: []byte("{}"),
		Perplexity:    domain.PerplexitySentinel,
		Status:        domain.EvaluationStatusFailed,
		FailureReason: cause.Error(),
	}
	if err := s.repo.Create(ctx, evaluation); err != nil {
		log.Printf("service.EvaluationService: persisting failed run for %q: %v", documentID, err)
	}
	return evaluation, cause
}

func toEvaluation(r *domain.EvaluationResult, status domain.EvaluationStatus, failureReason string) *domain.Evaluation {
	return &domain.Evaluation{
		DocumentID:             r.DocumentID,
		DocumentType:           r.DocumentType,
		ExtractedJSON:          r.Extracted,
		RawText:                r.RawText,
		SER:                    r.Metrics.SER,
		RefinedSER:             r.Metrics.RefinedSER,
		Perplexity:             r.Metrics.Perplexity,
		CER:                    r.Metrics.CER,
		StrictFieldAccuracy:    r.Metrics.StrictFieldAccuracy,
		FuzzyFieldAccuracy:     r.Metrics.FuzzyFieldAccuracy,
		ScoredAgainstReference: r.ScoredAgainstReference,
		Status:                 status,
		FailureReason:          failureReason,
	}
}
