package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"scanscore/internal/report"
	"scanscore/internal/service"
)

// ReportHandler serves evaluation reports as downloadable files.
type ReportHandler struct {
	svc *service.EvaluationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.EvaluationService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ExportCSV handles GET /api/v1/reports/evaluations.csv
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	limit, offset := paginationParams(c)
	evals, err := h.svc.ListEvaluations(c.Request.Context(), c.Query("document_id"), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(report.BOM)
	w := report.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteEvaluations(evals); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := report.BuildFilename(reportName(c), "csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/reports/evaluations.xlsx
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	limit, offset := paginationParams(c)
	evals, err := h.svc.ListEvaluations(c.Request.Context(), c.Query("document_id"), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := report.WriteXLSX(evals)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := report.BuildFilename(reportName(c), "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func reportName(c *gin.Context) string {
	if documentID := c.Query("document_id"); documentID != "" {
		return "evaluations_" + documentID
	}
	return "evaluations"
}
