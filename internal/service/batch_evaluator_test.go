package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scanscore/internal/domain"
)

func TestBatchEvaluator_Run(t *testing.T) {
	svc, _, ocr, fieldExt, repo := newTestService(t, nil)
	ocr.On("RecognizeText", mock.Anything, mock.Anything).Return("some text", nil)
	fieldExt.On("ExtractFields", mock.Anything, "some text", mock.Anything).
		Return(`{"document_type": "unknown"}`, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	img := pngBytes(t)
	var items []BatchItem
	for i := 0; i < 7; i++ {
		items = append(items, BatchItem{
			DocumentID:   fmt.Sprintf("doc-%d.png", i),
			DocumentType: domain.DocumentTypeUnknown,
			Raw:          img,
		})
	}

	batch := NewBatchEvaluator(svc, 3)
	results := batch.Run(context.Background(), items)

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.NoError(t, r.Err)
		require.NotNil(t, r.Evaluation)
		assert.Equal(t, items[i].DocumentID, r.Item.DocumentID, "results keep input order")
		assert.Equal(t, items[i].DocumentID, r.Evaluation.DocumentID)
	}
}

func TestBatchEvaluator_CapturesFailures(t *testing.T) {
	svc, _, ocr, _, repo := newTestService(t, nil)
	ocr.On("RecognizeText", mock.Anything, mock.Anything).Return("", errors.New("provider down"))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	items := []BatchItem{
		{DocumentID: "a.png", Raw: pngBytes(t)},
		{DocumentID: "b.png", Raw: pngBytes(t)},
	}

	batch := NewBatchEvaluator(svc, 2)
	results := batch.Run(context.Background(), items)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorContains(t, r.Err, "provider down")
		require.NotNil(t, r.Evaluation)
		assert.Equal(t, domain.EvaluationStatusFailed, r.Evaluation.Status)
	}
}

func TestBatchEvaluator_CancelledContext(t *testing.T) {
	svc, _, _, _, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := NewBatchEvaluator(svc, 2)
	results := batch.Run(ctx, []BatchItem{{DocumentID: "a.png", Raw: pngBytes(t)}})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestNewBatchEvaluator_MinimumConcurrency(t *testing.T) {
	svc, _, _, _, _ := newTestService(t, nil)
	batch := NewBatchEvaluator(svc, 0)
	assert.Equal(t, 1, batch.concurrency)
}
