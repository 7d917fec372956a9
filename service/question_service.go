package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexcase-backend/metrics"
	"lexcase-backend/models"
	"lexcase-backend/rag"
	"lexcase-backend/repository"
)

// DefaultMaxResults is how many index hits feed the answer context
const DefaultMaxResults = 5

// QuestionService answers questions about a case from its own index
type QuestionService struct {
	cases      CaseStore
	questions  QuestionStore
	indexer    *Indexer
	generator  AnswerGenerator
	maxResults int
	logger     *slog.Logger
}

// QuestionServiceOption is a functional option for QuestionService
type QuestionServiceOption func(*QuestionService)

// QuestionWithCaseStore sets the case store
func QuestionWithCaseStore(cases CaseStore) QuestionServiceOption {
	return func(s *QuestionService) {
		s.cases = cases
	}
}

// QuestionWithQuestionStore sets the question store
func QuestionWithQuestionStore(questions QuestionStore) QuestionServiceOption {
	return func(s *QuestionService) {
		s.questions = questions
	}
}

// QuestionWithIndexer sets the indexer
func QuestionWithIndexer(indexer *Indexer) QuestionServiceOption {
	return func(s *QuestionService) {
		s.indexer = indexer
	}
}

// QuestionWithGenerator sets the answer generator
func QuestionWithGenerator(generator AnswerGenerator) QuestionServiceOption {
	return func(s *QuestionService) {
		s.generator = generator
	}
}

// QuestionWithMaxResults sets how many hits are retrieved per question
func QuestionWithMaxResults(n int) QuestionServiceOption {
	return func(s *QuestionService) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// QuestionWithLogger sets the logger
func QuestionWithLogger(logger *slog.Logger) QuestionServiceOption {
	return func(s *QuestionService) {
		s.logger = logger
	}
}

// NewQuestionService creates a new question service
func NewQuestionService(opts ...QuestionServiceOption) *QuestionService {
	s := &QuestionService{
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskRequest represents a question asked on a case
type AskRequest struct {
	OwnerID  uuid.UUID
	CaseID   uuid.UUID
	Question string
}

// Ask records the question, retrieves matching units from the case index,
// generates an answer from them and stores it with its citations.
//
// A model failure still produces an answered question carrying the apology
// text. A retrieval failure leaves the question unanswered and is returned.
func (s *QuestionService) Ask(ctx context.Context, req AskRequest) (*models.Question, error) {
	if s.questions == nil || s.indexer == nil || s.generator == nil {
		return nil, ErrDependencyNotSet
	}
	text := strings.TrimSpace(req.Question)
	if text == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if _, err := ownedCase(ctx, s.cases, req.OwnerID, req.CaseID); err != nil {
		return nil, err
	}

	q := &models.Question{
		CaseID:       req.CaseID,
		QuestionText: text,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	start := time.Now()
	hits, err := s.indexer.Query(ctx, req.CaseID, text, s.maxResults)
	metrics.ObserveStage("retrieve", start)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("retrieval failed", "case_id", req.CaseID, "question_id", q.ID, "error", err)
		return nil, fmt.Errorf("failed to search case index: %w", err)
	}

	contextText, sources := rag.Assemble(hits)

	start = time.Now()
	answer := s.generator.Generate(ctx, text, contextText)
	metrics.ObserveStage("generate", start)

	answered, err := s.questions.SetAnswer(ctx, q.ID, answer, sources)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	outcome := "answered"
	if answer == rag.Apology {
		outcome = "fallback"
	}
	metrics.QuestionsTotal.WithLabelValues(outcome).Inc()

	s.logger.Info("question answered",
		"case_id", req.CaseID,
		"question_id", q.ID,
		"hits", len(hits),
		"outcome", outcome,
	)
	return answered, nil
}

// ListQuestions returns the case's questions, newest first
func (s *QuestionService) ListQuestions(ctx context.Context, ownerID, caseID uuid.UUID) ([]*models.Question, error) {
	if s.questions == nil {
		return nil, ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return nil, err
	}
	return s.questions.ListByCase(ctx, caseID)
}

// GetQuestion returns one question of the case
func (s *QuestionService) GetQuestion(ctx context.Context, ownerID, caseID, questionID uuid.UUID) (*models.Question, error) {
	if s.questions == nil {
		return nil, ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return nil, err
	}
	q, err := s.questions.GetByID(ctx, caseID, questionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}
