package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/service"
)

// CaseAPI is the case operations the handler needs; implemented by service.CaseService
type CaseAPI interface {
	CreateCase(ctx context.Context, req service.CreateCaseRequest) (*models.Case, error)
	ListCases(ctx context.Context, ownerID uuid.UUID) ([]*models.Case, error)
	GetCase(ctx context.Context, ownerID, caseID uuid.UUID) (*models.CaseDetail, error)
	UpdateCase(ctx context.Context, req service.UpdateCaseRequest) (*models.Case, error)
	DeleteCase(ctx context.Context, ownerID, caseID uuid.UUID) error
}

// CaseHandler handles HTTP requests for cases
type CaseHandler struct {
	cases CaseAPI
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(cases CaseAPI) *CaseHandler {
	return &CaseHandler{cases: cases}
}

// CreateCaseRequest represents the request body for creating a case
type CreateCaseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	CaseNumber  *string `json:"case_number"`
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	created, err := h.cases.CreateCase(c.Request.Context(), service.CreateCaseRequest{
		OwnerID:     currentUser(c),
		Title:       req.Title,
		Description: req.Description,
		CaseNumber:  req.CaseNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := h.cases.ListCases(c.Request.Context(), currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, cases)
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.cases.GetCase(c.Request.Context(), currentUser(c), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, detail)
}

// UpdateCaseRequest represents the request body for updating a case; omitted
// fields are left unchanged
type UpdateCaseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CaseNumber  *string `json:"case_number"`
}

// UpdateCase handles PUT /api/cases/:id
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	updated, err := h.cases.UpdateCase(c.Request.Context(), service.UpdateCaseRequest{
		OwnerID:     currentUser(c),
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		CaseNumber:  req.CaseNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cases.DeleteCase(c.Request.Context(), currentUser(c), caseID); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": caseID})
}
