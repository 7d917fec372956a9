package search

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"lexcase-backend/models"
)

const defaultMaxResults = 10

type memoryEntry struct {
	unit models.IndexedUnit
	seq  uint64
}

type memoryNamespace struct {
	entries map[string]*memoryEntry
}

// MemoryIndex is an in-process Index with the same ranking contract as the
// Elasticsearch index: fuzzy multi-field matching over weighted fields, with
// equal scores ordered by unit timestamp and then by insertion. Writes are
// visible immediately.
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[uuid.UUID]*memoryNamespace
	seq        uint64
}

// NewMemoryIndex creates an empty in-memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{namespaces: make(map[uuid.UUID]*memoryNamespace)}
}

func (m *MemoryIndex) CreateNamespace(ctx context.Context, caseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespace(caseID)
	return nil
}

// namespace returns the case namespace, creating it; callers hold the write lock
func (m *MemoryIndex) namespace(caseID uuid.UUID) *memoryNamespace {
	ns, ok := m.namespaces[caseID]
	if !ok {
		ns = &memoryNamespace{entries: make(map[string]*memoryEntry)}
		m.namespaces[caseID] = ns
	}
	return ns
}

// Index upserts the unit. A replaced unit keeps its original insertion slot.
func (m *MemoryIndex) Index(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	unit.CaseID = caseID
	ns := m.namespace(caseID)
	if existing, ok := ns.entries[unit.ID]; ok {
		existing.unit = unit
		return nil
	}
	m.seq++
	ns.entries[unit.ID] = &memoryEntry{unit: unit, seq: m.seq}
	return nil
}

func (m *MemoryIndex) Delete(ctx context.Context, caseID uuid.UUID, unitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.namespaces[caseID]; ok {
		delete(ns.entries, unitID)
	}
	return nil
}

func (m *MemoryIndex) DeleteNamespace(ctx context.Context, caseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, caseID)
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]Hit, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	terms := queryTerms(text)

	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.namespaces[caseID]
	if !ok || len(terms) == 0 {
		return []Hit{}, nil
	}

	type scored struct {
		hit Hit
		seq uint64
	}
	var results []scored
	for id, entry := range ns.entries {
		hit, ok := scoreUnit(id, entry.unit, terms)
		if ok {
			results = append(results, scored{hit: hit, seq: entry.seq})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.hit.Score != b.hit.Score {
			return a.hit.Score > b.hit.Score
		}
		if !a.hit.Unit.Timestamp.Equal(b.hit.Unit.Timestamp) {
			return a.hit.Unit.Timestamp.Before(b.hit.Unit.Timestamp)
		}
		return a.seq < b.seq
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = r.hit
	}
	return hits, nil
}

func (m *MemoryIndex) Ping(ctx context.Context) error {
	return nil
}

// Len reports how many units a case namespace holds
func (m *MemoryIndex) Len(caseID uuid.UUID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ns, ok := m.namespaces[caseID]; ok {
		return len(ns.entries)
	}
	return 0
}

func scoreUnit(id string, unit models.IndexedUnit, terms []string) (Hit, bool) {
	// fixed order keeps the float sum deterministic
	fields := []struct{ name, value string }{
		{"content", unit.Content},
		{"title", unit.Title},
		{"filename", unit.Filename},
		{"court_name", unit.CourtName},
	}

	hit := Hit{ID: id, Unit: unit, Highlights: make(map[string][]string)}
	for _, f := range fields {
		name, value := f.name, f.value
		if value == "" {
			continue
		}
		tokens := tokenize(value)
		score, matched := fieldScore(terms, tokens)
		if score == 0 {
			continue
		}
		hit.Score += fieldWeights[name] * score
		if name == "content" || name == "title" {
			hit.Highlights[name] = highlightFragments(value, tokens, matched)
		}
	}
	return hit, hit.Score > 0
}
