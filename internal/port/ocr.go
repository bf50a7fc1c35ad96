package port

import (
	"context"

	"scanscore/internal/domain"
)

// OCRProvider abstracts the vision model that reads text off a document image.
type OCRProvider interface {
	RecognizeText(ctx context.Context, payload domain.ImagePayload) (string, error)
}

// FieldExtractor abstracts the model that turns OCR text into structured JSON.
// The returned string is the model's raw output and may carry markdown fences.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, rawText string, documentType domain.DocumentType) (string, error)
}
