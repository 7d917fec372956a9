package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lexcase-backend/metrics"
	"lexcase-backend/models"
	"lexcase-backend/search"
)

const defaultIndexTimeout = 10 * time.Second

// Indexer keeps a case's index namespace in step with the database. The
// database is the source of truth; the namespace can always be rebuilt.
type Indexer struct {
	index     search.Index
	docs      DocumentStore
	acts      LegalActStore
	judgments JudgmentStore
	timeout   time.Duration
	logger    *slog.Logger
}

// IndexerOption is a functional option for Indexer
type IndexerOption func(*Indexer)

// IndexerWithDocuments sets the document store read during rebuilds
func IndexerWithDocuments(docs DocumentStore) IndexerOption {
	return func(i *Indexer) {
		i.docs = docs
	}
}

// IndexerWithLegalActs sets the legal act store read during rebuilds
func IndexerWithLegalActs(acts LegalActStore) IndexerOption {
	return func(i *Indexer) {
		i.acts = acts
	}
}

// IndexerWithJudgments sets the judgment store read during rebuilds
func IndexerWithJudgments(judgments JudgmentStore) IndexerOption {
	return func(i *Indexer) {
		i.judgments = judgments
	}
}

// IndexerWithTimeout bounds each index call
func IndexerWithTimeout(d time.Duration) IndexerOption {
	return func(i *Indexer) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// IndexerWithLogger sets the logger
func IndexerWithLogger(logger *slog.Logger) IndexerOption {
	return func(i *Indexer) {
		i.logger = logger
	}
}

// NewIndexer creates an indexer over index
func NewIndexer(index search.Index, opts ...IndexerOption) *Indexer {
	i := &Indexer{
		index:   index,
		timeout: defaultIndexTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Indexer) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	return fn(ctx)
}

// EnsureNamespace creates the case namespace if missing
func (i *Indexer) EnsureNamespace(ctx context.Context, caseID uuid.UUID) error {
	return i.call(ctx, func(ctx context.Context) error {
		return i.index.CreateNamespace(ctx, caseID)
	})
}

// DropNamespace removes the case namespace
func (i *Indexer) DropNamespace(ctx context.Context, caseID uuid.UUID) error {
	return i.call(ctx, func(ctx context.Context) error {
		return i.index.DeleteNamespace(ctx, caseID)
	})
}

// IndexUnit upserts one unit into the case namespace
func (i *Indexer) IndexUnit(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error {
	err := i.call(ctx, func(ctx context.Context) error {
		return i.index.Index(ctx, caseID, unit)
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", unit.ID, err)
	}
	return nil
}

// Query searches the case namespace
func (i *Indexer) Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]search.Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	return i.index.Query(ctx, caseID, text, maxResults)
}

// Rebuild clears the case namespace and re-indexes every document, legal act
// and judgment attached to the case. It returns the number of units indexed.
func (i *Indexer) Rebuild(ctx context.Context, caseID uuid.UUID) (int, error) {
	if i.docs == nil || i.acts == nil || i.judgments == nil {
		return 0, ErrDependencyNotSet
	}
	defer metrics.ObserveStage("rebuild", time.Now())

	units, err := i.caseUnits(ctx, caseID)
	if err != nil {
		return 0, err
	}

	if err := i.DropNamespace(ctx, caseID); err != nil {
		return 0, fmt.Errorf("failed to clear index for case %s: %w", caseID, err)
	}
	if err := i.EnsureNamespace(ctx, caseID); err != nil {
		return 0, fmt.Errorf("failed to recreate index for case %s: %w", caseID, err)
	}

	for n, unit := range units {
		if err := i.IndexUnit(ctx, caseID, unit); err != nil {
			return n, err
		}
	}

	i.logger.Info("rebuilt case index", "case_id", caseID, "units", len(units))
	return len(units), nil
}

// caseUnits projects everything attached to a case into index units
func (i *Indexer) caseUnits(ctx context.Context, caseID uuid.UUID) ([]models.IndexedUnit, error) {
	docs, err := i.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	acts, err := i.acts.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list legal acts: %w", err)
	}
	judgments, err := i.judgments.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list judgments: %w", err)
	}

	units := make([]models.IndexedUnit, 0, len(docs)+len(acts)+len(judgments))
	for _, doc := range docs {
		units = append(units, models.NewDocumentUnit(doc))
	}
	for _, act := range acts {
		units = append(units, models.NewLegalActUnit(caseID, act))
	}
	for _, j := range judgments {
		units = append(units, models.NewJudgmentUnit(caseID, j))
	}
	return units, nil
}
