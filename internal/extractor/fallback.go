package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"scanscore/internal/domain"
	"scanscore/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// provider bundles the two collaborator roles a configured backend fills.
type provider struct {
	name    string
	ocr     port.OCRProvider
	extract port.FieldExtractor
	circuit *circuitState
}

// Fallback tries providers in order, skipping those with open circuits. It
// implements both port.OCRProvider and port.FieldExtractor; the circuit is
// shared across the two roles since the quota behind them is.
type Fallback struct {
	providers []*provider
}

// Backend is a provider that serves both collaborator roles.
type Backend interface {
	port.OCRProvider
	port.FieldExtractor
}

// NewFallback creates a Fallback from an ordered list of backends and their names.
func NewFallback(backends []Backend, names []string) *Fallback {
	providers := make([]*provider, len(backends))
	for i, b := range backends {
		providers[i] = &provider{
			name:    names[i],
			ocr:     b,
			extract: b,
			circuit: &circuitState{},
		}
	}
	return &Fallback{providers: providers}
}

// RecognizeText runs the OCR chain.
func (f *Fallback) RecognizeText(ctx context.Context, payload domain.ImagePayload) (string, error) {
	return f.run("RecognizeText", func(p *provider) (string, error) {
		return p.ocr.RecognizeText(ctx, payload)
	})
}

// ExtractFields runs the extraction chain.
func (f *Fallback) ExtractFields(ctx context.Context, rawText string, documentType domain.DocumentType) (string, error) {
	return f.run("ExtractFields", func(p *provider) (string, error) {
		return p.extract.ExtractFields(ctx, rawText, documentType)
	})
}

func (f *Fallback) run(op string, call func(*provider) (string, error)) (string, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for _, p := range f.providers {
		if resetAt, open := p.circuit.isOpenWithReset(now); open {
			log.Printf("extractor.Fallback: %s skipping %s (circuit open until %s)", op, p.name, resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(p)
		if err == nil {
			return out, nil
		}

		log.Printf("extractor.Fallback: %s via %s failed: %v", op, p.name, err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			p.circuit.open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Everything skipped or rate limited.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}
