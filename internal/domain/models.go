package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MetricsRecord holds the numeric quality scores for one evaluation.
// ser, refined_ser, strict and fuzzy accuracy are in [0,1]; cer is
// normalized edit distance; ppl is language-model perplexity with
// unmeasurable mapped to PerplexitySentinel.
type MetricsRecord struct {
	SER                 float64 `db:"ser" json:"ser"`
	RefinedSER          float64 `db:"refined_ser" json:"refined_ser"`
	Perplexity          float64 `db:"ppl" json:"ppl"`
	CER                 float64 `db:"cer" json:"cer"`
	StrictFieldAccuracy float64 `db:"strict_field_accuracy" json:"strict_field_accuracy"`
	FuzzyFieldAccuracy  float64 `db:"fuzzy_field_accuracy" json:"fuzzy_field_accuracy"`
}

// PerplexitySentinel is the finite placeholder reported when the language
// model cannot score a text. Downstream aggregation never sees Inf or NaN.
const PerplexitySentinel = 999999.0

// EvaluationResult is the full outcome of evaluating one extraction.
type EvaluationResult struct {
	DocumentID             string          `json:"document_id"`
	DocumentType           string          `json:"document_type"`
	Extracted              json.RawMessage `json:"extracted"`
	ExtractedJSON          string          `json:"extracted_json"`
	RawText                string          `json:"raw_text"`
	PlainText              string          `json:"plain_text"`
	Metrics                MetricsRecord   `json:"metrics"`
	ScoredAgainstReference bool            `json:"scored_against_reference"`
}

// Evaluation is a persisted evaluation run.
type Evaluation struct {
	ID                     uuid.UUID       `db:"id" json:"id"`
	DocumentID             string          `db:"document_id" json:"document_id"`
	DocumentType           string          `db:"document_type" json:"document_type"`
	ExtractedJSON          json.RawMessage `db:"extracted_json" json:"extracted_json"`
	RawText                string          `db:"raw_text" json:"raw_text"`
	SER                    float64         `db:"ser" json:"ser"`
	RefinedSER             float64         `db:"refined_ser" json:"refined_ser"`
	Perplexity             float64         `db:"ppl" json:"ppl"`
	CER                    float64         `db:"cer" json:"cer"`
	StrictFieldAccuracy    float64         `db:"strict_field_accuracy" json:"strict_field_accuracy"`
	FuzzyFieldAccuracy     float64         `db:"fuzzy_field_accuracy" json:"fuzzy_field_accuracy"`
	ScoredAgainstReference bool            `db:"scored_against_reference" json:"scored_against_reference"`
	Status                 EvaluationStatus `db:"status" json:"status"`
	FailureReason          string          `db:"failure_reason" json:"failure_reason"`
	CreatedAt              time.Time       `db:"created_at" json:"created_at"`
}

// GroundTruth is a canonical reference record for a known document.
type GroundTruth struct {
	DocumentID    string    `db:"document_id" json:"document_id"`
	CanonicalJSON string    `db:"canonical_json" json:"canonical_json"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ImagePayload is a normalized image ready for the OCR collaborator.
// It is request-scoped: built by the normalizer, consumed once, discarded.
type ImagePayload struct {
	Data        []byte
	ContentType string
}

// NewMetricsRecordFromEvaluation extracts the metrics columns of a stored run.
func NewMetricsRecordFromEvaluation(e *Evaluation) MetricsRecord {
	return MetricsRecord{
		SER:                 e.SER,
		RefinedSER:          e.RefinedSER,
		Perplexity:          e.Perplexity,
		CER:                 e.CER,
		StrictFieldAccuracy: e.StrictFieldAccuracy,
		FuzzyFieldAccuracy:  e.FuzzyFieldAccuracy,
	}
}
