package eval

import (
	"context"
	"encoding/json"
	"log"

	"scanscore/internal/domain"
	"scanscore/internal/port"
)

// Evaluator sequences the scoring components against one extraction result.
// It is the only component that knows about ground-truth lookup.
type Evaluator struct {
	store      port.GroundTruthStore
	quality    *TextQualityScorer
	comparator *Comparator
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(store port.GroundTruthStore, quality *TextQualityScorer, comparator *Comparator) *Evaluator {
	return &Evaluator{
		store:      store,
		quality:    quality,
		comparator: comparator,
	}
}

// Evaluate scores candidateText against the ground truth for documentID, if
// any. Malformed candidates are wrapped in a raw-text fallback record rather
// than failing; a ground-truth miss leaves the reference metrics at 0.0 with
// ScoredAgainstReference=false, which is an abstention, not a zero score.
func (e *Evaluator) Evaluate(ctx context.Context, candidateText, documentID string) domain.EvaluationResult {
	cleaned := StripFences(candidateText)

	extracted, docType := parseCandidate(cleaned)

	plain := PlainText(cleaned)
	metrics := domain.MetricsRecord{
		SER:        e.quality.SpellingErrorRate(plain),
		RefinedSER: e.quality.RefinedSpellingErrorRate(plain),
		Perplexity: e.quality.Perplexity(ctx, plain),
	}

	scored := false
	if documentID != "" {
		gtJSON, ok, err := e.store.Lookup(ctx, documentID)
		switch {
		case err != nil:
			log.Printf("eval.Evaluator: ground truth lookup for %q failed, treating as miss: %v", documentID, err)
		case ok:
			scored = true
			gtCleaned := StripFences(gtJSON)
			metrics.CER = e.referenceCER(gtCleaned, cleaned)
			metrics.StrictFieldAccuracy = e.comparator.StrictAccuracy(gtCleaned, cleaned)
			metrics.FuzzyFieldAccuracy = e.comparator.FuzzyAccuracy(gtCleaned, cleaned)
		}
	}

	return domain.EvaluationResult{
		DocumentID:             documentID,
		DocumentType:           docType,
		Extracted:              extracted,
		ExtractedJSON:          cleaned,
		RawText:                candidateText,
		PlainText:              plain,
		Metrics:                metrics,
		ScoredAgainstReference: scored,
	}
}

// referenceCER canonicalizes both sides before computing the edit distance.
// If either side cannot be canonicalized the rate stays 0.0; the field
// accuracies already reflect the parse failure.
func (e *Evaluator) referenceCER(gtJSON, candJSON string) float64 {
	gtCanon, err := CanonicalJSON(gtJSON)
	if err != nil {
		log.Printf("eval.Evaluator: canonicalizing ground truth: %v", err)
		return 0.0
	}
	candCanon, err := CanonicalJSON(candJSON)
	if err != nil {
		return 0.0
	}
	return CharacterErrorRate(gtCanon, candCanon)
}

// parseCandidate parses the candidate JSON, falling back to a synthetic
// record holding the raw text when the model produced something unparseable.
func parseCandidate(cleaned string) (json.RawMessage, string) {
	var probe struct {
		DocumentType string `json:"document_type"`
	}
	if json.Valid([]byte(cleaned)) && json.Unmarshal([]byte(cleaned), &probe) == nil {
		docType := probe.DocumentType
		if docType == "" {
			docType = string(domain.DocumentTypeUnknown)
		}
		return json.RawMessage(cleaned), docType
	}

	fallback, err := json.Marshal(map[string]string{
		"document_type": string(domain.DocumentTypeUnknown),
		"raw_text":      cleaned,
	})
	if err != nil {
		// Marshaling a map of strings cannot fail; keep the record non-nil anyway.
		fallback = json.RawMessage(`{"document_type":"unknown"}`)
	}
	return fallback, string(domain.DocumentTypeUnknown)
}
