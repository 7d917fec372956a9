package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/lookup"
	"lexcase-backend/models"
	"lexcase-backend/service"
)

// LegalSourceAPI is the legal source operations the handler needs;
// implemented by service.LegalSourceService
type LegalSourceAPI interface {
	AttachLegalAct(ctx context.Context, req service.AttachLegalActRequest) (*models.LegalAct, error)
	DetachLegalAct(ctx context.Context, ownerID, caseID, actID uuid.UUID) error
	AttachJudgment(ctx context.Context, req service.AttachJudgmentRequest) (*models.Judgment, error)
	DetachJudgment(ctx context.Context, ownerID, caseID, judgmentID uuid.UUID) error
	SearchLegalActs(ctx context.Context, query string, limit int) ([]lookup.Result, error)
	SearchJudgments(ctx context.Context, query string, limit int) ([]lookup.Result, error)
	SimilarJudgments(ctx context.Context, ownerID, caseID uuid.UUID, limit int) (*service.SimilarJudgmentsResult, error)
}

// LegalSourceHandler handles statutes and judgments attached to cases
type LegalSourceHandler struct {
	legal LegalSourceAPI
}

// NewLegalSourceHandler creates a new legal source handler
func NewLegalSourceHandler(legal LegalSourceAPI) *LegalSourceHandler {
	return &LegalSourceHandler{legal: legal}
}

// AttachLegalActRequest attaches a statute by ISAP identifier, or manually
// when content is supplied
type AttachLegalActRequest struct {
	ExternalID   string `json:"external_id"`
	Title        string `json:"title"`
	Publication  string `json:"publication"`
	Year         int    `json:"year"`
	DocumentType string `json:"document_type"`
	Content      string `json:"content"`
	SourceURL    string `json:"source_url"`
}

// AttachLegalAct handles POST /api/cases/:id/legal-acts
func (h *LegalSourceHandler) AttachLegalAct(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AttachLegalActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	act, err := h.legal.AttachLegalAct(c.Request.Context(), service.AttachLegalActRequest{
		OwnerID:      currentUser(c),
		CaseID:       caseID,
		ExternalID:   req.ExternalID,
		Title:        req.Title,
		Publication:  req.Publication,
		Year:         req.Year,
		DocumentType: req.DocumentType,
		Content:      req.Content,
		SourceURL:    req.SourceURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, act)
}

// DetachLegalAct handles DELETE /api/cases/:id/legal-acts/:actId
func (h *LegalSourceHandler) DetachLegalAct(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actID, ok := pathID(c, "actId")
	if !ok {
		return
	}

	if err := h.legal.DetachLegalAct(c.Request.Context(), currentUser(c), caseID, actID); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": actID})
}

// AttachJudgmentRequest attaches a judgment by SAOS identifier, or manually
// when content is supplied. JudgmentDate is YYYY-MM-DD.
type AttachJudgmentRequest struct {
	ExternalID   string `json:"external_id"`
	CourtName    string `json:"court_name"`
	CourtType    string `json:"court_type"`
	CaseNumber   string `json:"case_number"`
	JudgmentDate string `json:"judgment_date"`
	Content      string `json:"content"`
	SourceURL    string `json:"source_url"`
}

// AttachJudgment handles POST /api/cases/:id/judgments
func (h *LegalSourceHandler) AttachJudgment(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AttachJudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var date *time.Time
	if req.JudgmentDate != "" {
		d, err := time.Parse(time.DateOnly, req.JudgmentDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", "judgment_date must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	judgment, err := h.legal.AttachJudgment(c.Request.Context(), service.AttachJudgmentRequest{
		OwnerID:      currentUser(c),
		CaseID:       caseID,
		ExternalID:   req.ExternalID,
		CourtName:    req.CourtName,
		CourtType:    req.CourtType,
		CaseNumber:   req.CaseNumber,
		JudgmentDate: date,
		Content:      req.Content,
		SourceURL:    req.SourceURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, judgment)
}

// DetachJudgment handles DELETE /api/cases/:id/judgments/:judgmentId
func (h *LegalSourceHandler) DetachJudgment(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	judgmentID, ok := pathID(c, "judgmentId")
	if !ok {
		return
	}

	if err := h.legal.DetachJudgment(c.Request.Context(), currentUser(c), caseID, judgmentID); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": judgmentID})
}

// SimilarJudgments handles GET /api/cases/:id/judgments/similar
func (h *LegalSourceHandler) SimilarJudgments(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.legal.SimilarJudgments(c.Request.Context(), currentUser(c), caseID, queryLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// SearchLegalActs handles GET /api/legal-acts/search?q=&limit=
func (h *LegalSourceHandler) SearchLegalActs(c *gin.Context) {
	results, err := h.legal.SearchLegalActs(c.Request.Context(), c.Query("q"), queryLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, results)
}

// SearchJudgments handles GET /api/judgments/search?q=&limit=
func (h *LegalSourceHandler) SearchJudgments(c *gin.Context) {
	results, err := h.legal.SearchJudgments(c.Request.Context(), c.Query("q"), queryLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, results)
}

// queryLimit reads ?limit=, returning 0 (service default) when absent or invalid
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
