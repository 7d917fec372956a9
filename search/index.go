// Package search holds the per-case full-text index: the Index contract, an
// Elasticsearch implementation and an in-memory one used for development and
// tests.
package search

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lexcase-backend/models"
)

// ErrUnavailable reports that the search engine could not be reached.
// Callers surface it as a service-unavailable error.
var ErrUnavailable = errors.New("search engine unavailable")

// Field weights for ranking; content first, then title, then descriptive fields
var fieldWeights = map[string]float64{
	"content":    3,
	"title":      2,
	"filename":   1,
	"court_name": 1,
}

// Highlight markers wrapped around matched terms
const (
	HighlightPre  = "<strong>"
	HighlightPost = "</strong>"
)

// Hit is one ranked query result
type Hit struct {
	ID         string              `json:"id"`
	Score      float64             `json:"score"`
	Unit       models.IndexedUnit  `json:"source"`
	Highlights map[string][]string `json:"highlights"`
}

// Index is the per-case full-text store
type Index interface {
	// CreateNamespace prepares the case namespace; existing namespaces are left alone
	CreateNamespace(ctx context.Context, caseID uuid.UUID) error

	// Index upserts a unit by ID; it is visible to Query once this returns
	Index(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error

	// Delete removes one unit; missing units are not an error
	Delete(ctx context.Context, caseID uuid.UUID, unitID string) error

	// DeleteNamespace removes every unit of the case; missing namespaces are not an error
	DeleteNamespace(ctx context.Context, caseID uuid.UUID) error

	// Query returns up to maxResults hits, best first
	Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]Hit, error)

	// Ping verifies the engine is reachable
	Ping(ctx context.Context) error
}
