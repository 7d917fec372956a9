package service

import (
	"context"

	"github.com/google/uuid"

	"lexcase-backend/models"
)

// CaseStore persists cases; implemented by repository.CaseRepository
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Case, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentStore persists document records; implemented by repository.DocumentRepository
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LegalActStore persists legal acts and case links; implemented by repository.LegalActRepository
type LegalActStore interface {
	Upsert(ctx context.Context, act *models.LegalAct) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LegalAct, error)
	Link(ctx context.Context, caseID, actID uuid.UUID) (bool, error)
	ListCaseIDs(ctx context.Context, actID uuid.UUID) ([]uuid.UUID, error)
	Unlink(ctx context.Context, caseID, actID uuid.UUID) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.LegalAct, error)
}

// JudgmentStore persists judgments and case links; implemented by repository.JudgmentRepository
type JudgmentStore interface {
	Upsert(ctx context.Context, j *models.Judgment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Judgment, error)
	Link(ctx context.Context, caseID, judgmentID uuid.UUID) (bool, error)
	ListCaseIDs(ctx context.Context, judgmentID uuid.UUID) ([]uuid.UUID, error)
	Unlink(ctx context.Context, caseID, judgmentID uuid.UUID) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Judgment, error)
}

// QuestionStore persists questions; implemented by repository.QuestionRepository
type QuestionStore interface {
	Create(ctx context.Context, q *models.Question) error
	SetAnswer(ctx context.Context, id uuid.UUID, answer string, sources models.Sources) (*models.Question, error)
	GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Question, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Question, error)
}

// TextExtractor turns uploaded bytes into plain text; implemented by extract.Extractor
type TextExtractor interface {
	Extract(content []byte, contentType string) string
}

// AnswerGenerator produces an answer for a question and its context; implemented by rag.Generator
type AnswerGenerator interface {
	Generate(ctx context.Context, question, contextText string) string
}

// LegalActFetcher loads a statute from an external database; implemented by lookup.ISAPClient
type LegalActFetcher interface {
	Fetch(ctx context.Context, externalID string) (*models.LegalAct, error)
}

// JudgmentFetcher loads a judgment from an external database; implemented by lookup.SAOSClient
type JudgmentFetcher interface {
	Fetch(ctx context.Context, externalID string) (*models.Judgment, error)
}
