package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the handlers mounted by NewRouter
type RouterConfig struct {
	Cases     *CaseHandler
	Documents *DocumentHandler
	Legal     *LegalSourceHandler
	Questions *QuestionHandler
	Health    *HealthHandler
	Users     UserLookup
	Logger    *slog.Logger
}

// NewRouter builds the HTTP API
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Health)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", RequireUser(cfg.Users))
	{
		if h := cfg.Cases; h != nil {
			api.POST("/cases", h.CreateCase)
			api.GET("/cases", h.ListCases)
			api.GET("/cases/:id", h.GetCase)
			api.PUT("/cases/:id", h.UpdateCase)
			api.DELETE("/cases/:id", h.DeleteCase)
		}

		if h := cfg.Documents; h != nil {
			api.POST("/cases/:id/documents", h.UploadDocument)
			api.GET("/cases/:id/documents", h.ListDocuments)
			api.GET("/cases/:id/documents/:docId", h.DownloadDocument)
			api.DELETE("/cases/:id/documents/:docId", h.DeleteDocument)
		}

		if h := cfg.Legal; h != nil {
			api.POST("/cases/:id/legal-acts", h.AttachLegalAct)
			api.DELETE("/cases/:id/legal-acts/:actId", h.DetachLegalAct)
			api.POST("/cases/:id/judgments", h.AttachJudgment)
			api.GET("/cases/:id/judgments/similar", h.SimilarJudgments)
			api.DELETE("/cases/:id/judgments/:judgmentId", h.DetachJudgment)
			api.GET("/legal-acts/search", h.SearchLegalActs)
			api.GET("/judgments/search", h.SearchJudgments)
		}

		if h := cfg.Questions; h != nil {
			api.POST("/cases/:id/questions", h.Ask)
			api.GET("/cases/:id/questions", h.ListQuestions)
			api.GET("/cases/:id/questions/:questionId", h.GetQuestion)
		}
	}

	return r
}
