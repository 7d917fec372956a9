package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/search"
	"lexcase-backend/service"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service and index errors onto HTTP statuses.
// Unexpected errors are logged and reported without their details.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		respondError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		respondError(c, http.StatusNotFound, "QUESTION_NOT_FOUND", "Question not found")
	case errors.Is(err, service.ErrLegalActNotFound):
		respondError(c, http.StatusNotFound, "LEGAL_ACT_NOT_FOUND", "Legal act not found")
	case errors.Is(err, service.ErrJudgmentNotFound):
		respondError(c, http.StatusNotFound, "JUDGMENT_NOT_FOUND", "Judgment not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, search.ErrUnavailable):
		slog.Error("search index unavailable", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusServiceUnavailable, "INDEX_UNAVAILABLE", "Search index is unavailable")
	case errors.Is(err, service.ErrLookupUnavailable):
		slog.Warn("legal database unavailable", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusServiceUnavailable, "LOOKUP_UNAVAILABLE", "External legal database is unavailable")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// pathID parses a UUID route parameter, responding 400 when malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
