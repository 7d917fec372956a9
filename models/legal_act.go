package models

import (
	"time"

	"github.com/google/uuid"
)

// LegalAct is a statute or regulation, shared between cases
type LegalAct struct {
	ID           uuid.UUID `json:"id"`
	ExternalID   string    `json:"external_id"` // ISAP / ELI identifier, e.g. "DU/1964/93"
	Title        string    `json:"title"`
	Publication  string    `json:"publication"` // e.g. "Dz.U. 1964 poz. 93"
	Year         int       `json:"year"`
	DocumentType string    `json:"document_type,omitempty"` // ustawa, rozporządzenie, ...
	Content      string    `json:"content"`
	SourceURL    string    `json:"source_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
