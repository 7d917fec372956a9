package models

import (
	"time"

	"github.com/google/uuid"
)

// Judgment is a court ruling, shared between cases
type Judgment struct {
	ID           uuid.UUID  `json:"id"`
	ExternalID   string     `json:"external_id"` // SAOS judgment id
	CourtName    string     `json:"court_name"`
	CourtType    string     `json:"court_type,omitempty"` // COMMON, SUPREME, CONSTITUTIONAL_TRIBUNAL, ...
	CaseNumber   string     `json:"case_number"`
	JudgmentDate *time.Time `json:"judgment_date,omitempty"`
	Content      string     `json:"content"`
	SourceURL    string     `json:"source_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// JudgmentDateString formats the judgment date as YYYY-MM-DD, or "" when unknown
func (j *Judgment) JudgmentDateString() string {
	if j.JudgmentDate == nil {
		return ""
	}
	return j.JudgmentDate.Format("2006-01-02")
}
