package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scanscore/internal/domain"
	"scanscore/internal/service"
)

// EvaluationHandler handles evaluation endpoints.
type EvaluationHandler struct {
	svc *service.EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(svc *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{svc: svc}
}

// CreateEvaluationRequest is the request body for POST /evaluations.
type CreateEvaluationRequest struct {
	CandidateText string `json:"candidate_text" binding:"required"`
	DocumentID    string `json:"document_id"`
}

// Create handles POST /api/v1/evaluations. It scores an already-extracted
// candidate text against the ground truth for document_id, if one exists.
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "candidate_text is required")
		return
	}

	evaluation, err := h.svc.EvaluateCandidate(c.Request.Context(), req.CandidateText, req.DocumentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, evaluation)
}

// ProcessDocumentRequest is the optional request body for POST /documents/:id/process.
type ProcessDocumentRequest struct {
	DocumentType string `json:"document_type"`
}

// ProcessDocument handles POST /api/v1/documents/:id/process. It runs the
// full pipeline on the stored scan: download, normalize, OCR, extraction,
// scoring, persistence.
func (h *EvaluationHandler) ProcessDocument(c *gin.Context) {
	documentID := c.Param("id")

	var req ProcessDocumentRequest
	// Body is optional; an absent or empty body means unknown document type.
	_ = c.ShouldBindJSON(&req)
	docType := domain.DocumentType(req.DocumentType)
	if req.DocumentType == "" {
		docType = domain.DocumentTypeUnknown
	} else if !docType.Valid() {
		RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "unknown document_type")
		return
	}

	evaluation, err := h.svc.ProcessDocument(c.Request.Context(), documentID, docType)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, evaluation)
}

// GetByID handles GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetByID(c *gin.Context) {
	evaluation, err := h.svc.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, evaluation)
}

// List handles GET /api/v1/evaluations
func (h *EvaluationHandler) List(c *gin.Context) {
	limit, offset := paginationParams(c)
	documentID := c.Query("document_id")

	evals, err := h.svc.ListEvaluations(c.Request.Context(), documentID, limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, evals, PagMeta{Total: len(evals), Offset: offset, Limit: limit})
}

// paginationParams reads limit and offset query parameters with defaults.
func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
