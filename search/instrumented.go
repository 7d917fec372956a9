package search

import (
	"context"

	"github.com/google/uuid"

	"lexcase-backend/metrics"
	"lexcase-backend/models"
)

// Instrumented wraps an Index and counts every call by operation and outcome
func Instrumented(next Index) Index {
	return &instrumentedIndex{next: next}
}

type instrumentedIndex struct {
	next Index
}

func record(op string, err error) error {
	metrics.IndexOperationsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
	return err
}

func (i *instrumentedIndex) CreateNamespace(ctx context.Context, caseID uuid.UUID) error {
	return record("create_namespace", i.next.CreateNamespace(ctx, caseID))
}

func (i *instrumentedIndex) Index(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error {
	return record("index", i.next.Index(ctx, caseID, unit))
}

func (i *instrumentedIndex) Delete(ctx context.Context, caseID uuid.UUID, unitID string) error {
	return record("delete", i.next.Delete(ctx, caseID, unitID))
}

func (i *instrumentedIndex) DeleteNamespace(ctx context.Context, caseID uuid.UUID) error {
	return record("delete_namespace", i.next.DeleteNamespace(ctx, caseID))
}

func (i *instrumentedIndex) Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]Hit, error) {
	hits, err := i.next.Query(ctx, caseID, text, maxResults)
	return hits, record("query", err)
}

func (i *instrumentedIndex) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}
