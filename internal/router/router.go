package router

import (
	"github.com/gin-gonic/gin"

	"scanscore/internal/handler"
	"scanscore/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	evalH *handler.EvaluationHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Evaluation routes
	evaluations := v1.Group("/evaluations")
	evaluations.POST("", evalH.Create)
	evaluations.GET("", evalH.List)
	evaluations.GET("/:id", evalH.GetByID)

	// Document pipeline routes
	documents := v1.Group("/documents")
	documents.POST("/:id/process", evalH.ProcessDocument)

	// Report routes
	reports := v1.Group("/reports")
	reports.GET("/evaluations.csv", reportH.ExportCSV)
	reports.GET("/evaluations.xlsx", reportH.ExportXLSX)

	return r
}
