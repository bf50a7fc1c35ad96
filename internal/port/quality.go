package port

import "context"

// Dictionary answers membership queries against a reference wordlist.
type Dictionary interface {
	IsKnownWord(token string) bool
}

// LanguageModel scores text fluency. SequenceNLL returns the average
// per-token negative log-likelihood of the text.
type LanguageModel interface {
	SequenceNLL(ctx context.Context, text string) (float64, error)
}
