package service

import (
	"context"
	"log"
	"sync"

	"scanscore/internal/domain"
)

// BatchItem identifies one document to evaluate in a batch run.
type BatchItem struct {
	DocumentID   string
	DocumentType domain.DocumentType

	// Raw holds local image bytes; when nil the scan is fetched from
	// object storage instead.
	Raw []byte
}

// BatchResult pairs a batch item with its outcome.
type BatchResult struct {
	Item       BatchItem
	Evaluation *domain.Evaluation
	Err        error
}

// BatchEvaluator fans a set of documents out over a bounded worker pool.
type BatchEvaluator struct {
	svc         *EvaluationService
	concurrency int
}

// NewBatchEvaluator creates a BatchEvaluator running at most concurrency
// evaluations at a time.
func NewBatchEvaluator(svc *EvaluationService, concurrency int) *BatchEvaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchEvaluator{svc: svc, concurrency: concurrency}
}

// Run evaluates every item and returns one result per item, in input order.
// Individual failures are captured in the result, not returned; ctx
// cancellation stops the pool from picking up further items.
func (b *BatchEvaluator) Run(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		if ctx.Err() != nil {
			results[i] = BatchResult{Item: item, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item BatchItem) {
			defer wg.Done()
			defer func() { <-sem }()

			var (
				evaluation *domain.Evaluation
				err        error
			)
			if item.Raw != nil {
				evaluation, err = b.svc.EvaluateImage(ctx, item.DocumentID, item.DocumentType, item.Raw)
			} else {
				evaluation, err = b.svc.ProcessDocument(ctx, item.DocumentID, item.DocumentType)
			}
			if err != nil {
				log.Printf("service.BatchEvaluator: document %q: %v", item.DocumentID, err)
			}
			results[i] = BatchResult{Item: item, Evaluation: evaluation, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
