package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexcase-backend/models"
)

func legalActUnit(title, content string) models.IndexedUnit {
	act := &models.LegalAct{
		ID:          uuid.New(),
		Title:       title,
		Publication: "Dz.U. 1964 nr 16 poz. 93",
		Year:        1964,
		Content:     content,
	}
	return models.NewLegalActUnit(uuid.Nil, act)
}

func documentUnit(caseID uuid.UUID, filename, content string) models.IndexedUnit {
	return models.NewDocumentUnit(&models.Document{
		ID:          uuid.New(),
		CaseID:      caseID,
		Filename:    filename,
		ContentText: content,
	})
}

func TestMemoryIndex_RanksMatchingActFirst(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()
	require.NoError(t, idx.CreateNamespace(ctx, caseID))

	civil := legalActUnit("Kodeks cywilny", "Ustawa reguluje stosunki cywilnoprawne między osobami fizycznymi i prawnymi.")
	labour := legalActUnit("Kodeks pracy", "Przepisy o czasie pracy, urlopach i wynagrodzeniach pracowników.")
	require.NoError(t, idx.Index(ctx, caseID, civil))
	require.NoError(t, idx.Index(ctx, caseID, labour))

	hits, err := idx.Query(ctx, caseID, "stosunki cywilnoprawne", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	assert.Equal(t, civil.ID, hits[0].ID)
	assert.Equal(t, "Kodeks cywilny", hits[0].Unit.Title)
	assert.Equal(t, caseID, hits[0].Unit.CaseID)
	assert.Greater(t, hits[0].Score, 0.0)
	for _, h := range hits[1:] {
		assert.Less(t, h.Score, hits[0].Score)
	}
	require.NotEmpty(t, hits[0].Highlights["content"])
	assert.Contains(t, hits[0].Highlights["content"][0], "<strong>stosunki</strong> <strong>cywilnoprawne</strong>")
}

func TestMemoryIndex_FuzzyMatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()

	unit := legalActUnit("Kodeks cywilny", "stosunki cywilnoprawne")
	require.NoError(t, idx.Index(ctx, caseID, unit))

	hits, err := idx.Query(ctx, caseID, "cywilnoprawen", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, unit.ID, hits[0].ID)
}

func TestMemoryIndex_ShortTermsNeedExactMatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()

	require.NoError(t, idx.Index(ctx, caseID, documentUnit(caseID, "a.txt", "ul. Kwiatowa 5")))

	hits, err := idx.Query(ctx, caseID, "ux", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryIndex_TitleOutweighsFilename(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()

	byFilename := documentUnit(caseID, "umowa.pdf", "")
	byFilename.Title = "Załącznik"
	byTitle := documentUnit(caseID, "zalacznik.pdf", "")
	byTitle.Title = "Umowa"

	require.NoError(t, idx.Index(ctx, caseID, byFilename))
	require.NoError(t, idx.Index(ctx, caseID, byTitle))

	hits, err := idx.Query(ctx, caseID, "umowa", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, byTitle.ID, hits[0].ID)
	assert.Equal(t, byFilename.ID, hits[1].ID)
}

func TestMemoryIndex_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()

	first := documentUnit(caseID, "a.txt", "wypowiedzenie umowy najmu")
	second := documentUnit(caseID, "b.txt", "wypowiedzenie umowy najmu")
	require.NoError(t, idx.Index(ctx, caseID, first))
	require.NoError(t, idx.Index(ctx, caseID, second))
	// re-indexing keeps the original slot
	require.NoError(t, idx.Index(ctx, caseID, first))

	hits, err := idx.Query(ctx, caseID, "najmu", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, first.ID, hits[0].ID)
	assert.Equal(t, second.ID, hits[1].ID)
}

func TestMemoryIndex_TiesFollowFirstStoredTime(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()
	stored := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := documentUnit(caseID, "a.txt", "wypowiedzenie umowy najmu")
	older.Timestamp = stored
	newer := documentUnit(caseID, "b.txt", "wypowiedzenie umowy najmu")
	newer.Timestamp = stored.Add(time.Hour)

	// a rebuild may re-insert units in any order
	require.NoError(t, idx.Index(ctx, caseID, newer))
	require.NoError(t, idx.Index(ctx, caseID, older))

	hits, err := idx.Query(ctx, caseID, "najmu", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, older.ID, hits[0].ID)
	assert.Equal(t, newer.ID, hits[1].ID)
}

func TestMemoryIndex_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()

	unit := documentUnit(caseID, "a.txt", "pierwsza wersja")
	require.NoError(t, idx.Index(ctx, caseID, unit))
	unit.Content = "druga wersja"
	require.NoError(t, idx.Index(ctx, caseID, unit))

	assert.Equal(t, 1, idx.Len(caseID))

	hits, err := idx.Query(ctx, caseID, "pierwsza", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Query(ctx, caseID, "druga", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "druga wersja", hits[0].Unit.Content)
}

func TestMemoryIndex_DeleteAndNamespaces(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseA, caseB := uuid.New(), uuid.New()

	unitA := documentUnit(caseA, "a.txt", "pozew o zapłatę")
	unitB := documentUnit(caseB, "b.txt", "pozew o zapłatę")
	require.NoError(t, idx.Index(ctx, caseA, unitA))
	require.NoError(t, idx.Index(ctx, caseB, unitB))

	hits, err := idx.Query(ctx, caseA, "pozew", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, unitA.ID, hits[0].ID)

	require.NoError(t, idx.Delete(ctx, caseA, unitA.ID))
	require.NoError(t, idx.Delete(ctx, caseA, unitA.ID))
	hits, err = idx.Query(ctx, caseA, "pozew", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.DeleteNamespace(ctx, caseB))
	require.NoError(t, idx.DeleteNamespace(ctx, caseB))
	hits, err = idx.Query(ctx, caseB, "pozew", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)
}

func TestMemoryIndex_MaxResults(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()
	for i := 0; i < 4; i++ {
		require.NoError(t, idx.Index(ctx, caseID, documentUnit(caseID, "doc.txt", "apelacja")))
	}

	hits, err := idx.Query(ctx, caseID, "apelacja", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestMemoryIndex_EmptyQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	caseID := uuid.New()
	require.NoError(t, idx.Index(ctx, caseID, documentUnit(caseID, "a.txt", "treść")))

	hits, err := idx.Query(ctx, caseID, "  ?! ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
