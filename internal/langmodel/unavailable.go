package langmodel

import (
	"context"

	"scanscore/internal/domain"
)

// Unavailable is a LanguageModel for deployments without a model file.
// Every call fails, which the scorer maps to the perplexity sentinel.
type Unavailable struct{}

// NewUnavailable creates an always-failing language model.
func NewUnavailable() *Unavailable {
	return &Unavailable{}
}

func (u *Unavailable) SequenceNLL(_ context.Context, _ string) (float64, error) {
	return 0, domain.ErrModelUnavailable
}
