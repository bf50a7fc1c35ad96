package eval

import (
	"context"
	"log"
	"math"
	"strings"
	"unicode"

	"scanscore/internal/domain"
	"scanscore/internal/port"
)

// TextQualityScorer computes reference-free quality metrics over the
// de-structured plain-text rendering of an extraction.
type TextQualityScorer struct {
	dict port.Dictionary
	lm   port.LanguageModel
}

// NewTextQualityScorer creates a scorer backed by the given wordlist and
// language model.
func NewTextQualityScorer(dict port.Dictionary, lm port.LanguageModel) *TextQualityScorer {
	return &TextQualityScorer{dict: dict, lm: lm}
}

// SpellingErrorRate is the fraction of tokens that look like words but are
// not in the reference wordlist. Empty input scores 0.0.
func (s *TextQualityScorer) SpellingErrorRate(text string) float64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0.0
	}
	errors := 0
	for _, tok := range tokens {
		if isCheckable(tok) && !s.dict.IsKnownWord(tok) {
			errors++
		}
	}
	return float64(errors) / float64(len(tokens))
}

// RefinedSpellingErrorRate forgives a miss when the fixed digit-to-letter
// substitutions (0 to o, 1 to l, 5 to s) turn the token into a known word,
// so the result never exceeds SpellingErrorRate.
func (s *TextQualityScorer) RefinedSpellingErrorRate(text string) float64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0.0
	}
	errors := 0
	for _, tok := range tokens {
		if !isCheckable(tok) || s.dict.IsKnownWord(tok) {
			continue
		}
		if !s.dict.IsKnownWord(deleet(tok)) {
			errors++
		}
	}
	return float64(errors) / float64(len(tokens))
}

// Perplexity is exp of the model's average per-token negative log-likelihood.
// Any model failure or non-finite result maps to domain.PerplexitySentinel.
func (s *TextQualityScorer) Perplexity(ctx context.Context, text string) float64 {
	nll, err := s.lm.SequenceNLL(ctx, text)
	if err != nil {
		log.Printf("eval.TextQualityScorer: perplexity unmeasurable: %v", err)
		return domain.PerplexitySentinel
	}
	ppl := math.Exp(nll)
	if math.IsNaN(ppl) || math.IsInf(ppl, 0) || ppl > domain.PerplexitySentinel {
		return domain.PerplexitySentinel
	}
	return ppl
}

// isCheckable reports whether a token is a word the dictionary can judge:
// purely alphabetic, or alphabetic once the leetspeak digits are replaced.
func isCheckable(tok string) bool {
	return isAlphabetic(tok) || isAlphabetic(deleet(tok))
}

func isAlphabetic(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

var leetReplacer = strings.NewReplacer("0", "o", "1", "l", "5", "s")

func deleet(tok string) string {
	return leetReplacer.Replace(tok)
}
