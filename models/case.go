package models

import (
	"time"

	"github.com/google/uuid"
)

// Case is a user's folder for one legal matter
type Case struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CaseNumber  *string   `json:"case_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CaseDetail is a case together with everything attached to it
type CaseDetail struct {
	Case
	Documents []*Document `json:"documents"`
	LegalActs []*LegalAct `json:"legal_acts"`
	Judgments []*Judgment `json:"judgments"`
}
