package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/repository"
	"lexcase-backend/storage"
)

// CaseService handles business logic for cases
type CaseService struct {
	cases     CaseStore
	docs      DocumentStore
	acts      LegalActStore
	judgments JudgmentStore
	indexer   *Indexer
	storage   storage.Storage
	logger    *slog.Logger
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithCaseStore sets the case store
func CaseWithCaseStore(cases CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.cases = cases
	}
}

// CaseWithDocumentStore sets the document store
func CaseWithDocumentStore(docs DocumentStore) CaseServiceOption {
	return func(s *CaseService) {
		s.docs = docs
	}
}

// CaseWithLegalActStore sets the legal act store
func CaseWithLegalActStore(acts LegalActStore) CaseServiceOption {
	return func(s *CaseService) {
		s.acts = acts
	}
}

// CaseWithJudgmentStore sets the judgment store
func CaseWithJudgmentStore(judgments JudgmentStore) CaseServiceOption {
	return func(s *CaseService) {
		s.judgments = judgments
	}
}

// CaseWithIndexer sets the indexer
func CaseWithIndexer(indexer *Indexer) CaseServiceOption {
	return func(s *CaseService) {
		s.indexer = indexer
	}
}

// CaseWithStorage sets the blob storage
func CaseWithStorage(store storage.Storage) CaseServiceOption {
	return func(s *CaseService) {
		s.storage = store
	}
}

// CaseWithLogger sets the logger
func CaseWithLogger(logger *slog.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.logger = logger
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	CaseNumber  *string
}

// CreateCase stores a case and prepares its index namespace
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*models.Case, error) {
	if s.cases == nil || s.indexer == nil {
		return nil, ErrDependencyNotSet
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	c := &models.Case{
		OwnerID:     req.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		CaseNumber:  trimOptional(req.CaseNumber),
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	if err := s.indexer.EnsureNamespace(ctx, c.ID); err != nil {
		if delErr := s.cases.Delete(ctx, c.ID); delErr != nil {
			s.logger.Warn("failed to roll back case", "case_id", c.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create index for case: %w", err)
	}

	s.logger.Info("case created", "case_id", c.ID, "owner_id", c.OwnerID)
	return c, nil
}

// ListCases returns the owner's cases, newest first
func (s *CaseService) ListCases(ctx context.Context, ownerID uuid.UUID) ([]*models.Case, error) {
	if s.cases == nil {
		return nil, ErrDependencyNotSet
	}
	return s.cases.ListByOwner(ctx, ownerID)
}

// GetCase returns a case with its documents, legal acts and judgments
func (s *CaseService) GetCase(ctx context.Context, ownerID, caseID uuid.UUID) (*models.CaseDetail, error) {
	if s.docs == nil || s.acts == nil || s.judgments == nil {
		return nil, ErrDependencyNotSet
	}
	c, err := ownedCase(ctx, s.cases, ownerID, caseID)
	if err != nil {
		return nil, err
	}

	detail := &models.CaseDetail{Case: *c}
	if detail.Documents, err = s.docs.ListByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if detail.LegalActs, err = s.acts.ListByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if detail.Judgments, err = s.judgments.ListByCase(ctx, caseID); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateCaseRequest represents a request to update a case; nil fields are left unchanged
type UpdateCaseRequest struct {
	OwnerID     uuid.UUID
	CaseID      uuid.UUID
	Title       *string
	Description *string
	CaseNumber  *string
}

// UpdateCase edits a case's descriptive fields
func (s *CaseService) UpdateCase(ctx context.Context, req UpdateCaseRequest) (*models.Case, error) {
	c, err := ownedCase(ctx, s.cases, req.OwnerID, req.CaseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		c.Title = title
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.CaseNumber != nil {
		c.CaseNumber = trimOptional(req.CaseNumber)
	}

	if err := s.cases.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	return c, nil
}

// DeleteCase removes the index namespace, the case with everything that
// cascades from it, and the stored files
func (s *CaseService) DeleteCase(ctx context.Context, ownerID, caseID uuid.UUID) error {
	if s.docs == nil || s.indexer == nil || s.storage == nil {
		return ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return err
	}

	docs, err := s.docs.ListByCase(ctx, caseID)
	if err != nil {
		return err
	}

	if err := s.indexer.DropNamespace(ctx, caseID); err != nil {
		return fmt.Errorf("failed to delete case index: %w", err)
	}
	if err := s.cases.Delete(ctx, caseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCaseNotFound
		}
		return fmt.Errorf("failed to delete case: %w", err)
	}

	for _, doc := range docs {
		if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
			s.logger.Warn("failed to delete stored file", "case_id", caseID, "path", doc.StoragePath, "error", err)
		}
	}

	s.logger.Info("case deleted", "case_id", caseID, "documents", len(docs))
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
