package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded case file
type Document struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	Description string    `json:"description,omitempty"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	ContentText string    `json:"-"` // Extracted text, served through the index only
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayTitle returns the title, falling back to the filename
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Filename
}
