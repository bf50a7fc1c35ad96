package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scanscore/internal/domain"
	"scanscore/internal/eval"
	"scanscore/internal/groundtruth"
	"scanscore/internal/langmodel"
	"scanscore/internal/lexicon"
	"scanscore/mocks"
)

const testBucket = "scan-bucket"

func newTestService(t *testing.T, groundTruths map[string]string) (*EvaluationService, *mocks.MockObjectStorage, *mocks.MockOCRProvider, *mocks.MockFieldExtractor, *mocks.MockEvaluationRepo) {
	t.Helper()
	storage := new(mocks.MockObjectStorage)
	ocr := new(mocks.MockOCRProvider)
	fieldExt := new(mocks.MockFieldExtractor)
	repo := new(mocks.MockEvaluationRepo)

	quality := eval.NewTextQualityScorer(lexicon.NewEmbedded(), langmodel.NewUnavailable())
	evaluator := eval.NewEvaluator(groundtruth.NewMemoryStore(groundTruths), quality, eval.NewComparator())

	svc := NewEvaluationService(storage, testBucket, ocr, fieldExt, evaluator, repo, 0)
	return svc, storage, ocr, fieldExt, repo
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))))
	return buf.Bytes()
}

func TestEvaluateCandidate(t *testing.T) {
	gt := `{"document_type": "customer_information_sheet", "name": "Maria Santos"}`
	svc, _, _, _, repo := newTestService(t, map[string]string{"CIF-Good.png": gt})

	var saved *domain.Evaluation
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Evaluation")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Evaluation) }).
		Return(nil)

	evaluation, err := svc.EvaluateCandidate(context.Background(), gt, "CIF-Good.png")
	require.NoError(t, err)

	assert.Equal(t, domain.EvaluationStatusCompleted, evaluation.Status)
	assert.True(t, evaluation.ScoredAgainstReference)
	assert.Equal(t, 1.0, evaluation.StrictFieldAccuracy)
	assert.Equal(t, domain.PerplexitySentinel, evaluation.Perplexity)
	assert.Same(t, saved, evaluation)
	repo.AssertExpectations(t)
}

func TestEvaluateCandidate_PersistFails(t *testing.T) {
	svc, _, _, _, repo := newTestService(t, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.EvaluateCandidate(context.Background(), `{"a": 1}`, "")
	assert.ErrorContains(t, err, "db down")
}

func TestProcessDocument(t *testing.T) {
	gt := `{"document_type": "deposit_slip_front", "amount": "100.00"}`
	svc, storage, ocr, fieldExt, repo := newTestService(t, map[string]string{"DF-Good.png": gt})

	storage.On("Download", mock.Anything, testBucket, "DF-Good.png").Return(pngBytes(t), nil)
	ocr.On("RecognizeText", mock.Anything, mock.AnythingOfType("domain.ImagePayload")).
		Return("DEPOSIT SLIP 100.00", nil)
	fieldExt.On("ExtractFields", mock.Anything, "DEPOSIT SLIP 100.00", domain.DocumentTypeDepositSlipFront).
		Return(gt, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	evaluation, err := svc.ProcessDocument(context.Background(), "DF-Good.png", domain.DocumentTypeDepositSlipFront)
	require.NoError(t, err)

	assert.Equal(t, domain.EvaluationStatusCompleted, evaluation.Status)
	assert.True(t, evaluation.ScoredAgainstReference)
	assert.Equal(t, 1.0, evaluation.StrictFieldAccuracy)
	assert.Equal(t, 0.0, evaluation.CER)
	storage.AssertExpectations(t)
	ocr.AssertExpectations(t)
	fieldExt.AssertExpectations(t)
}

func TestProcessDocument_DownloadFails(t *testing.T) {
	svc, storage, _, _, repo := newTestService(t, nil)
	storage.On("Download", mock.Anything, testBucket, "missing.png").
		Return(nil, errors.New("no such key"))

	var saved *domain.Evaluation
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Evaluation")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Evaluation) }).
		Return(nil)

	_, err := svc.ProcessDocument(context.Background(), "missing.png", domain.DocumentTypeUnknown)
	require.ErrorContains(t, err, "no such key")

	// The failure is still persisted so batch reports see the document.
	require.NotNil(t, saved)
	assert.Equal(t, domain.EvaluationStatusFailed, saved.Status)
	assert.Contains(t, saved.FailureReason, "no such key")
	assert.Equal(t, domain.PerplexitySentinel, saved.Perplexity)
}

func TestEvaluateImage_OCRFails(t *testing.T) {
	svc, _, ocr, _, repo := newTestService(t, nil)
	ocr.On("RecognizeText", mock.Anything, mock.Anything).Return("", errors.New("vision model down"))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.EvaluateImage(context.Background(), "doc.png", domain.DocumentTypeUnknown, pngBytes(t))
	assert.ErrorContains(t, err, "vision model down")
}

func TestEvaluateImage_BadImage(t *testing.T) {
	svc, _, _, _, repo := newTestService(t, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.EvaluateImage(context.Background(), "doc.png", domain.DocumentTypeUnknown, []byte("not an image"))
	assert.ErrorContains(t, err, "normalizing")
}

func TestGetEvaluation_InvalidID(t *testing.T) {
	svc, _, _, _, _ := newTestService(t, nil)
	_, err := svc.GetEvaluation(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEvaluations(t *testing.T) {
	svc, _, _, _, repo := newTestService(t, nil)

	t.Run("filters by document id", func(t *testing.T) {
		repo.On("ListByDocumentID", mock.Anything, "CIF-Good.png", 50, 0).
			Return([]domain.Evaluation{{DocumentID: "CIF-Good.png"}}, nil).Once()

		evals, err := svc.ListEvaluations(context.Background(), "CIF-Good.png", 0, -5)
		require.NoError(t, err)
		assert.Len(t, evals, 1)
	})

	t.Run("lists recent without filter", func(t *testing.T) {
		repo.On("ListRecent", mock.Anything, 10, 20).
			Return([]domain.Evaluation{}, nil).Once()

		_, err := svc.ListEvaluations(context.Background(), "", 10, 20)
		require.NoError(t, err)
	})
}
