package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexcase-backend/lookup"
	"lexcase-backend/models"
	"lexcase-backend/repository"
)

const (
	// similarKeywords is how many case keywords seed a similar-judgment search
	similarKeywords     = 3
	defaultLookupLimit  = 10
	keywordSampleLength = 10
)

// LegalSourceService attaches statutes and judgments to cases and searches
// the external legal databases
type LegalSourceService struct {
	cases          CaseStore
	docs           DocumentStore
	acts           LegalActStore
	judgments      JudgmentStore
	indexer        *Indexer
	actFetcher     LegalActFetcher
	judgmentFetch  JudgmentFetcher
	actSearch      lookup.Searcher
	judgmentSearch lookup.Searcher
	logger         *slog.Logger
}

// LegalSourceServiceOption is a functional option for LegalSourceService
type LegalSourceServiceOption func(*LegalSourceService)

// LegalWithCaseStore sets the case store
func LegalWithCaseStore(cases CaseStore) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.cases = cases
	}
}

// LegalWithDocumentStore sets the document store used for keyword extraction
func LegalWithDocumentStore(docs DocumentStore) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.docs = docs
	}
}

// LegalWithLegalActStore sets the legal act store
func LegalWithLegalActStore(acts LegalActStore) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.acts = acts
	}
}

// LegalWithJudgmentStore sets the judgment store
func LegalWithJudgmentStore(judgments JudgmentStore) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.judgments = judgments
	}
}

// LegalWithIndexer sets the indexer
func LegalWithIndexer(indexer *Indexer) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.indexer = indexer
	}
}

// LegalWithActLookup sets the statute database used to fetch and search acts
func LegalWithActLookup(fetcher LegalActFetcher, searcher lookup.Searcher) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.actFetcher = fetcher
		s.actSearch = searcher
	}
}

// LegalWithJudgmentLookup sets the judgment database used to fetch and search judgments
func LegalWithJudgmentLookup(fetcher JudgmentFetcher, searcher lookup.Searcher) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.judgmentFetch = fetcher
		s.judgmentSearch = searcher
	}
}

// LegalWithLogger sets the logger
func LegalWithLogger(logger *slog.Logger) LegalSourceServiceOption {
	return func(s *LegalSourceService) {
		s.logger = logger
	}
}

// NewLegalSourceService creates a new legal source service
func NewLegalSourceService(opts ...LegalSourceServiceOption) *LegalSourceService {
	s := &LegalSourceService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mapLookupError translates external database failures into service errors
func mapLookupError(err error, notFound error) error {
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		return fmt.Errorf("%w: %v", notFound, err)
	case errors.Is(err, lookup.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	default:
		return err
	}
}

// AttachLegalActRequest attaches a statute either by external ID (fetched
// from ISAP) or by supplying its fields directly
type AttachLegalActRequest struct {
	OwnerID      uuid.UUID
	CaseID       uuid.UUID
	ExternalID   string
	Title        string
	Publication  string
	Year         int
	DocumentType string
	Content      string
	SourceURL    string
}

// AttachLegalAct stores the act (shared between cases by external ID), links
// it to the case and indexes it in the case namespace
func (s *LegalSourceService) AttachLegalAct(ctx context.Context, req AttachLegalActRequest) (*models.LegalAct, error) {
	if s.acts == nil || s.indexer == nil {
		return nil, ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, req.OwnerID, req.CaseID); err != nil {
		return nil, err
	}

	var act *models.LegalAct
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID != "" && strings.TrimSpace(req.Content) == "" {
		if s.actFetcher == nil {
			return nil, ErrDependencyNotSet
		}
		fetched, err := s.actFetcher.Fetch(ctx, externalID)
		if err != nil {
			return nil, mapLookupError(err, ErrLegalActNotFound)
		}
		act = fetched
	} else {
		act = &models.LegalAct{
			ExternalID:   externalID,
			Title:        strings.TrimSpace(req.Title),
			Publication:  strings.TrimSpace(req.Publication),
			Year:         req.Year,
			DocumentType: strings.TrimSpace(req.DocumentType),
			Content:      strings.TrimSpace(req.Content),
			SourceURL:    strings.TrimSpace(req.SourceURL),
		}
		if act.Title == "" || act.Content == "" {
			return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
		}
	}

	if err := s.acts.Upsert(ctx, act); err != nil {
		return nil, fmt.Errorf("failed to save legal act: %w", err)
	}
	created, err := s.acts.Link(ctx, req.CaseID, act.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to link legal act: %w", err)
	}
	if err := s.indexer.IndexUnit(ctx, req.CaseID, models.NewLegalActUnit(req.CaseID, act)); err != nil {
		if created {
			if unlinkErr := s.acts.Unlink(ctx, req.CaseID, act.ID); unlinkErr != nil {
				s.logger.Warn("failed to roll back legal act link", "case_id", req.CaseID, "legal_act_id", act.ID, "error", unlinkErr)
			}
		}
		return nil, err
	}

	// the row is shared, so every other case indexing it gets the new text
	caseIDs, err := s.acts.ListCaseIDs(ctx, act.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases linked to legal act: %w", err)
	}
	if err := s.refreshShared(ctx, req.CaseID, caseIDs, func(caseID uuid.UUID) models.IndexedUnit {
		return models.NewLegalActUnit(caseID, act)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("legal act attached", "case_id", req.CaseID, "legal_act_id", act.ID, "external_id", act.ExternalID)
	return act, nil
}

// DetachLegalAct unlinks an act from the case and rebuilds the case index
func (s *LegalSourceService) DetachLegalAct(ctx context.Context, ownerID, caseID, actID uuid.UUID) error {
	if s.acts == nil || s.indexer == nil {
		return ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return err
	}

	if err := s.acts.Unlink(ctx, caseID, actID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLegalActNotFound
		}
		return fmt.Errorf("failed to unlink legal act: %w", err)
	}

	_, err := s.indexer.Rebuild(ctx, caseID)
	return err
}

// AttachJudgmentRequest attaches a judgment either by external ID (fetched
// from SAOS) or by supplying its fields directly
type AttachJudgmentRequest struct {
	OwnerID      uuid.UUID
	CaseID       uuid.UUID
	ExternalID   string
	CourtName    string
	CourtType    string
	CaseNumber   string
	JudgmentDate *time.Time
	Content      string
	SourceURL    string
}

// AttachJudgment stores the judgment (shared between cases by external ID),
// links it to the case and indexes it in the case namespace
func (s *LegalSourceService) AttachJudgment(ctx context.Context, req AttachJudgmentRequest) (*models.Judgment, error) {
	if s.judgments == nil || s.indexer == nil {
		return nil, ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, req.OwnerID, req.CaseID); err != nil {
		return nil, err
	}

	var judgment *models.Judgment
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID != "" && strings.TrimSpace(req.Content) == "" {
		if s.judgmentFetch == nil {
			return nil, ErrDependencyNotSet
		}
		fetched, err := s.judgmentFetch.Fetch(ctx, externalID)
		if err != nil {
			return nil, mapLookupError(err, ErrJudgmentNotFound)
		}
		judgment = fetched
	} else {
		judgment = &models.Judgment{
			ExternalID:   externalID,
			CourtName:    strings.TrimSpace(req.CourtName),
			CourtType:    strings.TrimSpace(req.CourtType),
			CaseNumber:   strings.TrimSpace(req.CaseNumber),
			JudgmentDate: req.JudgmentDate,
			Content:      strings.TrimSpace(req.Content),
			SourceURL:    strings.TrimSpace(req.SourceURL),
		}
		if judgment.CaseNumber == "" || judgment.Content == "" {
			return nil, fmt.Errorf("%w: case number and content are required", ErrInvalidInput)
		}
	}

	if err := s.judgments.Upsert(ctx, judgment); err != nil {
		return nil, fmt.Errorf("failed to save judgment: %w", err)
	}
	created, err := s.judgments.Link(ctx, req.CaseID, judgment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to link judgment: %w", err)
	}
	if err := s.indexer.IndexUnit(ctx, req.CaseID, models.NewJudgmentUnit(req.CaseID, judgment)); err != nil {
		if created {
			if unlinkErr := s.judgments.Unlink(ctx, req.CaseID, judgment.ID); unlinkErr != nil {
				s.logger.Warn("failed to roll back judgment link", "case_id", req.CaseID, "judgment_id", judgment.ID, "error", unlinkErr)
			}
		}
		return nil, err
	}

	caseIDs, err := s.judgments.ListCaseIDs(ctx, judgment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases linked to judgment: %w", err)
	}
	if err := s.refreshShared(ctx, req.CaseID, caseIDs, func(caseID uuid.UUID) models.IndexedUnit {
		return models.NewJudgmentUnit(caseID, judgment)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("judgment attached", "case_id", req.CaseID, "judgment_id", judgment.ID, "external_id", judgment.ExternalID)
	return judgment, nil
}

// DetachJudgment unlinks a judgment from the case and rebuilds the case index
func (s *LegalSourceService) DetachJudgment(ctx context.Context, ownerID, caseID, judgmentID uuid.UUID) error {
	if s.judgments == nil || s.indexer == nil {
		return ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return err
	}

	if err := s.judgments.Unlink(ctx, caseID, judgmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrJudgmentNotFound
		}
		return fmt.Errorf("failed to unlink judgment: %w", err)
	}

	_, err := s.indexer.Rebuild(ctx, caseID)
	return err
}

// refreshShared re-indexes a shared legal record in every linked case other
// than the one just attached. All cases are attempted; failures are joined.
func (s *LegalSourceService) refreshShared(ctx context.Context, attachedTo uuid.UUID, caseIDs []uuid.UUID, unitFor func(caseID uuid.UUID) models.IndexedUnit) error {
	var errs []error
	for _, caseID := range caseIDs {
		if caseID == attachedTo {
			continue
		}
		if err := s.indexer.IndexUnit(ctx, caseID, unitFor(caseID)); err != nil {
			s.logger.Warn("failed to refresh shared legal record", "case_id", caseID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func searchWith(ctx context.Context, searcher lookup.Searcher, query string, limit int) ([]lookup.Result, error) {
	if searcher == nil {
		return nil, ErrDependencyNotSet
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultLookupLimit
	}
	results, err := searcher.Search(ctx, query, limit)
	if errors.Is(err, lookup.ErrNotFound) {
		return []lookup.Result{}, nil
	}
	if err != nil {
		return nil, mapLookupError(err, ErrInvalidInput)
	}
	return results, nil
}

// SearchLegalActs searches the statute database
func (s *LegalSourceService) SearchLegalActs(ctx context.Context, query string, limit int) ([]lookup.Result, error) {
	return searchWith(ctx, s.actSearch, query, limit)
}

// SearchJudgments searches the judgment database
func (s *LegalSourceService) SearchJudgments(ctx context.Context, query string, limit int) ([]lookup.Result, error) {
	return searchWith(ctx, s.judgmentSearch, query, limit)
}

// SimilarJudgmentsResult holds suggested judgments and the keywords behind them
type SimilarJudgmentsResult struct {
	Keywords  []string        `json:"keywords"`
	Judgments []lookup.Result `json:"judgments"`
}

// SimilarJudgments suggests judgments related to the case, searched by the
// most frequent keywords of the case documents
func (s *LegalSourceService) SimilarJudgments(ctx context.Context, ownerID, caseID uuid.UUID, limit int) (*SimilarJudgmentsResult, error) {
	if s.docs == nil || s.judgmentSearch == nil {
		return nil, ErrDependencyNotSet
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.ContentText)
	}

	keywords := lookup.ExtractKeywords(strings.Join(texts, "\n"), keywordSampleLength)
	result := &SimilarJudgmentsResult{Keywords: keywords, Judgments: []lookup.Result{}}
	if len(keywords) == 0 {
		return result, nil
	}

	query := keywords
	if len(query) > similarKeywords {
		query = query[:similarKeywords]
	}
	judgments, err := searchWith(ctx, s.judgmentSearch, strings.Join(query, " "), limit)
	if err != nil {
		return nil, err
	}
	result.Judgments = judgments
	return result, nil
}
