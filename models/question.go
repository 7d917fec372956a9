package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionStatus is derived from whether the answer has been persisted
type QuestionStatus string

const (
	QuestionStatusCreated  QuestionStatus = "created"
	QuestionStatusAnswered QuestionStatus = "answered"
)

// Sources represents the citation list stored with an answer
type Sources []Source

// Value implements driver.Valuer for JSONB
func (s Sources) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *Sources) Scan(value interface{}) error {
	if value == nil {
		*s = make(Sources, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported sources column type %T", value)
	}

	if len(bytes) == 0 {
		*s = make(Sources, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Question is one question/answer exchange on a case
type Question struct {
	ID           uuid.UUID  `json:"id"`
	CaseID       uuid.UUID  `json:"case_id"`
	QuestionText string     `json:"question"`
	AnswerText   *string    `json:"answer"`
	Sources      Sources    `json:"sources"`
	CreatedAt    time.Time  `json:"created_at"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
}

// Status reports the lifecycle state
func (q *Question) Status() QuestionStatus {
	if q.AnswerText == nil {
		return QuestionStatusCreated
	}
	return QuestionStatusAnswered
}

// MarshalJSON adds the derived status
func (q Question) MarshalJSON() ([]byte, error) {
	type alias Question
	sources := q.Sources
	if sources == nil {
		sources = Sources{}
	}
	a := alias(q)
	a.Sources = sources
	return json.Marshal(struct {
		alias
		Status QuestionStatus `json:"status"`
	}{a, q.Status()})
}
