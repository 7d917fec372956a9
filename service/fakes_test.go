package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lexcase-backend/lookup"
	"lexcase-backend/models"
	"lexcase-backend/repository"
	"lexcase-backend/search"
	"lexcase-backend/storage"
)

type fakeCases struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Case
}

func newFakeCases() *fakeCases {
	return &fakeCases{items: make(map[uuid.UUID]*models.Case)}
}

func (f *fakeCases) Create(ctx context.Context, c *models.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCases) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCases) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Case{}
	for _, c := range f.items {
		if c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCases) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeCases) Update(ctx context.Context, c *models.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCases) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeDocuments struct {
	mu    sync.Mutex
	items []*models.Document
}

func (f *fakeDocuments) Create(ctx context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	cp := *doc
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeDocuments) GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.items {
		if d.ID == id && d.CaseID == caseID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDocuments) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Document{}
	for _, d := range f.items {
		if d.CaseID == caseID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.items {
		if d.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type link struct {
	caseID uuid.UUID
	id     uuid.UUID
}

type fakeLegalActs struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.LegalAct
	links []link
}

func newFakeLegalActs() *fakeLegalActs {
	return &fakeLegalActs{items: make(map[uuid.UUID]*models.LegalAct)}
}

func (f *fakeLegalActs) Upsert(ctx context.Context, act *models.LegalAct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if act.ExternalID != "" {
		for _, existing := range f.items {
			if existing.ExternalID == act.ExternalID {
				act.ID = existing.ID
				act.CreatedAt = existing.CreatedAt
			}
		}
	}
	if act.ID == uuid.Nil {
		act.ID = uuid.New()
		act.CreatedAt = time.Now()
	}
	cp := *act
	f.items[act.ID] = &cp
	return nil
}

func (f *fakeLegalActs) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalAct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	act, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *act
	return &cp, nil
}

func (f *fakeLegalActs) Link(ctx context.Context, caseID, actID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.caseID == caseID && l.id == actID {
			return false, nil
		}
	}
	f.links = append(f.links, link{caseID, actID})
	return true, nil
}

func (f *fakeLegalActs) ListCaseIDs(ctx context.Context, actID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []uuid.UUID{}
	for _, l := range f.links {
		if l.id == actID {
			ids = append(ids, l.caseID)
		}
	}
	return ids, nil
}

func (f *fakeLegalActs) Unlink(ctx context.Context, caseID, actID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.links {
		if l.caseID == caseID && l.id == actID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLegalActs) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.LegalAct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.LegalAct{}
	for _, l := range f.links {
		if l.caseID == caseID {
			cp := *f.items[l.id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeJudgments struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Judgment
	links []link
}

func newFakeJudgments() *fakeJudgments {
	return &fakeJudgments{items: make(map[uuid.UUID]*models.Judgment)}
}

func (f *fakeJudgments) Upsert(ctx context.Context, j *models.Judgment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j.ExternalID != "" {
		for _, existing := range f.items {
			if existing.ExternalID == j.ExternalID {
				j.ID = existing.ID
				j.CreatedAt = existing.CreatedAt
			}
		}
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
		j.CreatedAt = time.Now()
	}
	cp := *j
	f.items[j.ID] = &cp
	return nil
}

func (f *fakeJudgments) GetByID(ctx context.Context, id uuid.UUID) (*models.Judgment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJudgments) Link(ctx context.Context, caseID, judgmentID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.caseID == caseID && l.id == judgmentID {
			return false, nil
		}
	}
	f.links = append(f.links, link{caseID, judgmentID})
	return true, nil
}

func (f *fakeJudgments) ListCaseIDs(ctx context.Context, judgmentID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []uuid.UUID{}
	for _, l := range f.links {
		if l.id == judgmentID {
			ids = append(ids, l.caseID)
		}
	}
	return ids, nil
}

func (f *fakeJudgments) Unlink(ctx context.Context, caseID, judgmentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.links {
		if l.caseID == caseID && l.id == judgmentID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeJudgments) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Judgment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Judgment{}
	for _, l := range f.links {
		if l.caseID == caseID {
			cp := *f.items[l.id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeQuestions struct {
	mu    sync.Mutex
	items []*models.Question
}

func (f *fakeQuestions) Create(ctx context.Context, q *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	cp := *q
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeQuestions) SetAnswer(ctx context.Context, id uuid.UUID, answer string, sources models.Sources) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.items {
		if q.ID != id {
			continue
		}
		if q.AnswerText != nil {
			return nil, repository.ErrAlreadyAnswered
		}
		now := time.Now()
		q.AnswerText = &answer
		q.Sources = sources
		q.AnsweredAt = &now
		cp := *q
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuestions) GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.items {
		if q.ID == id && q.CaseID == caseID {
			cp := *q
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuestions) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Question{}
	for _, q := range f.items {
		if q.CaseID == caseID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string][]byte)}
}

func (m *memoryBlobs) Put(ctx context.Context, objectPath string, data io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[objectPath] = b
	return nil
}

func (m *memoryBlobs) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[objectPath]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memoryBlobs) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, objectPath)
	return nil
}

func (m *memoryBlobs) Ping(ctx context.Context) error { return nil }

func (m *memoryBlobs) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// textExtractor treats every upload as UTF-8 text
type textExtractor struct{}

func (textExtractor) Extract(content []byte, contentType string) string {
	return string(content)
}

type recordingGenerator struct {
	mu       sync.Mutex
	answer   string
	question string
	context  string
	calls    int
}

func (g *recordingGenerator) Generate(ctx context.Context, question, contextText string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.question = question
	g.context = contextText
	return g.answer
}

// brokenIndex fails the operations named in failing with search.ErrUnavailable
type brokenIndex struct {
	next    search.Index
	failing map[string]bool
}

var errIndexDown = errors.Join(search.ErrUnavailable, errors.New("connection refused"))

func (b *brokenIndex) CreateNamespace(ctx context.Context, caseID uuid.UUID) error {
	if b.failing["create"] {
		return errIndexDown
	}
	return b.next.CreateNamespace(ctx, caseID)
}

func (b *brokenIndex) Index(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error {
	if b.failing["index"] {
		return errIndexDown
	}
	return b.next.Index(ctx, caseID, unit)
}

func (b *brokenIndex) Delete(ctx context.Context, caseID uuid.UUID, unitID string) error {
	return b.next.Delete(ctx, caseID, unitID)
}

func (b *brokenIndex) DeleteNamespace(ctx context.Context, caseID uuid.UUID) error {
	return b.next.DeleteNamespace(ctx, caseID)
}

func (b *brokenIndex) Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]search.Hit, error) {
	if b.failing["query"] {
		return nil, errIndexDown
	}
	return b.next.Query(ctx, caseID, text, maxResults)
}

func (b *brokenIndex) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

type fakeActFetcher struct {
	acts map[string]*models.LegalAct
	err  error
}

func (f *fakeActFetcher) Fetch(ctx context.Context, externalID string) (*models.LegalAct, error) {
	if f.err != nil {
		return nil, f.err
	}
	act, ok := f.acts[externalID]
	if !ok {
		return nil, lookup.ErrNotFound
	}
	cp := *act
	return &cp, nil
}

type fakeJudgmentFetcher struct {
	judgments map[string]*models.Judgment
	err       error
}

func (f *fakeJudgmentFetcher) Fetch(ctx context.Context, externalID string) (*models.Judgment, error) {
	if f.err != nil {
		return nil, f.err
	}
	j, ok := f.judgments[externalID]
	if !ok {
		return nil, lookup.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results []lookup.Result
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]lookup.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// env wires every service over fakes and an in-memory index
type env struct {
	cases     *fakeCases
	docs      *fakeDocuments
	acts      *fakeLegalActs
	judgments *fakeJudgments
	questions *fakeQuestions
	blobs     *memoryBlobs
	index     search.Index
	memory    *search.MemoryIndex
	indexer   *Indexer
	generator *recordingGenerator

	actFetcher      *fakeActFetcher
	judgmentFetcher *fakeJudgmentFetcher
	actSearch       *fakeSearcher
	judgmentSearch  *fakeSearcher

	Cases     *CaseService
	Documents *DocumentService
	Legal     *LegalSourceService
	Questions *QuestionService
}

func newEnv(wrap ...func(search.Index) search.Index) *env {
	e := &env{
		cases:           newFakeCases(),
		docs:            &fakeDocuments{},
		acts:            newFakeLegalActs(),
		judgments:       newFakeJudgments(),
		questions:       &fakeQuestions{},
		blobs:           newMemoryBlobs(),
		memory:          search.NewMemoryIndex(),
		generator:       &recordingGenerator{answer: "Odpowiedź."},
		actFetcher:      &fakeActFetcher{acts: map[string]*models.LegalAct{}},
		judgmentFetcher: &fakeJudgmentFetcher{judgments: map[string]*models.Judgment{}},
		actSearch:       &fakeSearcher{},
		judgmentSearch:  &fakeSearcher{},
	}
	e.index = e.memory
	for _, w := range wrap {
		e.index = w(e.index)
	}

	e.indexer = NewIndexer(e.index,
		IndexerWithDocuments(e.docs),
		IndexerWithLegalActs(e.acts),
		IndexerWithJudgments(e.judgments),
	)
	e.Cases = NewCaseService(
		CaseWithCaseStore(e.cases),
		CaseWithDocumentStore(e.docs),
		CaseWithLegalActStore(e.acts),
		CaseWithJudgmentStore(e.judgments),
		CaseWithIndexer(e.indexer),
		CaseWithStorage(e.blobs),
	)
	e.Documents = NewDocumentService(
		DocumentWithCaseStore(e.cases),
		DocumentWithDocumentStore(e.docs),
		DocumentWithStorage(e.blobs),
		DocumentWithExtractor(textExtractor{}),
		DocumentWithIndexer(e.indexer),
	)
	e.Legal = NewLegalSourceService(
		LegalWithCaseStore(e.cases),
		LegalWithDocumentStore(e.docs),
		LegalWithLegalActStore(e.acts),
		LegalWithJudgmentStore(e.judgments),
		LegalWithIndexer(e.indexer),
		LegalWithActLookup(e.actFetcher, e.actSearch),
		LegalWithJudgmentLookup(e.judgmentFetcher, e.judgmentSearch),
	)
	e.Questions = NewQuestionService(
		QuestionWithCaseStore(e.cases),
		QuestionWithQuestionStore(e.questions),
		QuestionWithIndexer(e.indexer),
		QuestionWithGenerator(e.generator),
	)
	return e
}
