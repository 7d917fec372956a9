package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/repository"
)

var (
	ErrCaseNotFound      = errors.New("case not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrLegalActNotFound  = errors.New("legal act not found")
	ErrJudgmentNotFound  = errors.New("judgment not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLookupUnavailable = errors.New("external legal database unavailable")
	ErrDependencyNotSet  = errors.New("service dependency not set")
)

// ownedCase loads a case and hides it from everyone but its owner
func ownedCase(ctx context.Context, cases CaseStore, ownerID, caseID uuid.UUID) (*models.Case, error) {
	if cases == nil {
		return nil, ErrDependencyNotSet
	}
	c, err := cases.GetByID(ctx, caseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, ErrCaseNotFound
	}
	return c, nil
}
