package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/service"
)

// QuestionAPI is the question operations the handler needs; implemented by service.QuestionService
type QuestionAPI interface {
	Ask(ctx context.Context, req service.AskRequest) (*models.Question, error)
	ListQuestions(ctx context.Context, ownerID, caseID uuid.UUID) ([]*models.Question, error)
	GetQuestion(ctx context.Context, ownerID, caseID, questionID uuid.UUID) (*models.Question, error)
}

// QuestionHandler handles questions asked about a case
type QuestionHandler struct {
	questions QuestionAPI
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions QuestionAPI) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// AskRequest represents the request body for asking a question
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask handles POST /api/cases/:id/questions. The answer is produced
// synchronously; the response carries the answered question with its sources.
func (h *QuestionHandler) Ask(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	q, err := h.questions.Ask(c.Request.Context(), service.AskRequest{
		OwnerID:  currentUser(c),
		CaseID:   caseID,
		Question: req.Question,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, q)
}

// ListQuestions handles GET /api/cases/:id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	questions, err := h.questions.ListQuestions(c.Request.Context(), currentUser(c), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, questions)
}

// GetQuestion handles GET /api/cases/:id/questions/:questionId
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(c, "questionId")
	if !ok {
		return
	}

	q, err := h.questions.GetQuestion(c.Request.Context(), currentUser(c), caseID, questionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, q)
}
