package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scanscore/internal/domain"
	"scanscore/internal/eval"
	"scanscore/internal/groundtruth"
	"scanscore/internal/langmodel"
	"scanscore/internal/lexicon"
	"scanscore/internal/service"
	"scanscore/mocks"
)

func newTestRouter(t *testing.T, repo *mocks.MockEvaluationRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gt := map[string]string{
		"CIF-Good.png": `{"document_type": "customer_information_sheet", "name": "Maria Santos"}`,
	}
	quality := eval.NewTextQualityScorer(lexicon.NewEmbedded(), langmodel.NewUnavailable())
	evaluator := eval.NewEvaluator(groundtruth.NewMemoryStore(gt), quality, eval.NewComparator())
	svc := service.NewEvaluationService(nil, "", nil, nil, evaluator, repo, 0)
	h := NewEvaluationHandler(svc)

	r := gin.New()
	r.POST("/api/v1/evaluations", h.Create)
	r.GET("/api/v1/evaluations", h.List)
	r.GET("/api/v1/evaluations/:id", h.GetByID)
	r.POST("/api/v1/documents/:id/process", h.ProcessDocument)
	return r
}

func TestCreateEvaluation(t *testing.T) {
	repo := new(mocks.MockEvaluationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	r := newTestRouter(t, repo)

	body, _ := json.Marshal(CreateEvaluationRequest{
		CandidateText: `{"document_type": "customer_information_sheet", "name": "Maria Santos"}`,
		DocumentID:    "CIF-Good.png",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    domain.Evaluation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.ScoredAgainstReference)
	assert.Equal(t, 1.0, resp.Data.StrictFieldAccuracy)
}

func TestCreateEvaluation_MissingBody(t *testing.T) {
	r := newTestRouter(t, new(mocks.MockEvaluationRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestProcessDocument_InvalidType(t *testing.T) {
	r := newTestRouter(t, new(mocks.MockEvaluationRepo))

	body := []byte(`{"document_type": "passport"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/x.png/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_DOCUMENT_TYPE")
}

func TestGetEvaluation_NotFound(t *testing.T) {
	r := newTestRouter(t, new(mocks.MockEvaluationRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestListEvaluations(t *testing.T) {
	repo := new(mocks.MockEvaluationRepo)
	repo.On("ListRecent", mock.Anything, 50, 0).
		Return([]domain.Evaluation{{DocumentID: "CIF-Good.png"}}, nil)
	r := newTestRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluations", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    []domain.Evaluation `json:"data"`
		Meta    *PagMeta            `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 50, resp.Meta.Limit)
}
