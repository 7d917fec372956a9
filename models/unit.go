package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnitType tags the variant of an indexed unit
type UnitType string

const (
	UnitTypeDocument UnitType = "document"
	UnitTypeLegalAct UnitType = "legal_act"
	UnitTypeJudgment UnitType = "judgment"
)

// IndexedUnit is one searchable record in a case's index namespace.
// Fields outside the unit's variant are left empty.
type IndexedUnit struct {
	ID        string    `json:"-"`
	CaseID    uuid.UUID `json:"case_id"`
	Type      UnitType  `json:"type"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// document
	Filename     string `json:"filename,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	Description  string `json:"description,omitempty"`

	// legal_act
	ExternalID  string `json:"external_id,omitempty"`
	Publication string `json:"publication,omitempty"`
	Year        int    `json:"year,omitempty"`

	// judgment
	CourtName    string `json:"court_name,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	JudgmentDate string `json:"judgment_date,omitempty"`
}

// UnitID builds the namespace-unique identifier "{type}-{row-id}"
func UnitID(t UnitType, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s", t, id)
}

// firstStored is the unit's tie-break time: when its record was first
// persisted, so re-projections keep their place
func firstStored(createdAt time.Time) time.Time {
	if createdAt.IsZero() {
		return time.Now().UTC()
	}
	return createdAt.UTC()
}

// NewDocumentUnit projects a document record into the index
func NewDocumentUnit(doc *Document) IndexedUnit {
	return IndexedUnit{
		ID:           UnitID(UnitTypeDocument, doc.ID),
		CaseID:       doc.CaseID,
		Type:         UnitTypeDocument,
		Title:        doc.DisplayTitle(),
		Content:      doc.ContentText,
		Timestamp:    firstStored(doc.CreatedAt),
		Filename:     doc.Filename,
		DocumentType: doc.MimeType,
		Description:  doc.Description,
	}
}

// NewLegalActUnit projects a legal act linked to caseID into the index
func NewLegalActUnit(caseID uuid.UUID, act *LegalAct) IndexedUnit {
	return IndexedUnit{
		ID:          UnitID(UnitTypeLegalAct, act.ID),
		CaseID:      caseID,
		Type:        UnitTypeLegalAct,
		Title:       act.Title,
		Content:     act.Content,
		Timestamp:   firstStored(act.CreatedAt),
		ExternalID:  act.ExternalID,
		Publication: act.Publication,
		Year:        act.Year,
	}
}

// NewJudgmentUnit projects a judgment linked to caseID into the index
func NewJudgmentUnit(caseID uuid.UUID, j *Judgment) IndexedUnit {
	return IndexedUnit{
		ID:           UnitID(UnitTypeJudgment, j.ID),
		CaseID:       caseID,
		Type:         UnitTypeJudgment,
		Title:        j.CaseNumber,
		Content:      j.Content,
		Timestamp:    firstStored(j.CreatedAt),
		ExternalID:   j.ExternalID,
		CourtName:    j.CourtName,
		CaseNumber:   j.CaseNumber,
		JudgmentDate: j.JudgmentDateString(),
	}
}
