package models

import (
	"encoding/json"
	"fmt"
)

// SourceDetails is the type-specific part of a Source. Implemented by
// LegalActSource, JudgmentSource and DocumentSource.
type SourceDetails interface {
	UnitType() UnitType
}

// LegalActSource cites a statute
type LegalActSource struct {
	Title       string `json:"title"`
	Publication string `json:"publication"`
	Year        int    `json:"year,omitempty"`
}

func (LegalActSource) UnitType() UnitType { return UnitTypeLegalAct }

// JudgmentSource cites a court ruling
type JudgmentSource struct {
	CourtName    string `json:"court_name"`
	CaseNumber   string `json:"case_number"`
	JudgmentDate string `json:"judgment_date"`
}

func (JudgmentSource) UnitType() UnitType { return UnitTypeJudgment }

// DocumentSource cites an uploaded file
type DocumentSource struct {
	Filename     string `json:"filename"`
	DocumentType string `json:"document_type"`
}

func (DocumentSource) UnitType() UnitType { return UnitTypeDocument }

// Source is a provenance record attached to an answer
type Source struct {
	UnitID  string
	Score   float64
	Details SourceDetails
}

// SourceFromUnit derives the citation for a retrieved unit
func SourceFromUnit(unit IndexedUnit, score float64) Source {
	s := Source{UnitID: unit.ID, Score: score}
	switch unit.Type {
	case UnitTypeLegalAct:
		s.Details = LegalActSource{Title: unit.Title, Publication: unit.Publication, Year: unit.Year}
	case UnitTypeJudgment:
		s.Details = JudgmentSource{CourtName: unit.CourtName, CaseNumber: unit.CaseNumber, JudgmentDate: unit.JudgmentDate}
	default:
		s.Details = DocumentSource{Filename: unit.Filename, DocumentType: unit.DocumentType}
	}
	return s
}

// Type returns the unit type of the cited record
func (s Source) Type() UnitType {
	if s.Details == nil {
		return UnitTypeDocument
	}
	return s.Details.UnitType()
}

type sourceHeader struct {
	UnitID string   `json:"unit_id,omitempty"`
	Score  float64  `json:"score"`
	Type   UnitType `json:"type"`
}

// MarshalJSON flattens the variant fields next to score and type
func (s Source) MarshalJSON() ([]byte, error) {
	header := sourceHeader{UnitID: s.UnitID, Score: s.Score, Type: s.Type()}
	switch d := s.Details.(type) {
	case LegalActSource:
		return json.Marshal(struct {
			sourceHeader
			LegalActSource
		}{header, d})
	case JudgmentSource:
		return json.Marshal(struct {
			sourceHeader
			JudgmentSource
		}{header, d})
	case DocumentSource:
		return json.Marshal(struct {
			sourceHeader
			DocumentSource
		}{header, d})
	case nil:
		return json.Marshal(header)
	default:
		return nil, fmt.Errorf("unsupported source details %T", d)
	}
}

// UnmarshalJSON selects the variant from the "type" field
func (s *Source) UnmarshalJSON(data []byte) error {
	var header sourceHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	s.UnitID = header.UnitID
	s.Score = header.Score

	switch header.Type {
	case UnitTypeLegalAct:
		var d LegalActSource
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		s.Details = d
	case UnitTypeJudgment:
		var d JudgmentSource
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		s.Details = d
	default:
		var d DocumentSource
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		s.Details = d
	}
	return nil
}
