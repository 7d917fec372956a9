package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexcase-backend/models"
	"lexcase-backend/search"
)

func TestDocumentService_UploadIndexesText(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	c, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Najem"})
	require.NoError(t, err)

	doc, err := e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{
		OwnerID:  owner,
		CaseID:   c.ID,
		Filename: "umowa.txt",
		Title:    "Umowa najmu",
		Content:  []byte("Najemca zobowiązuje się płacić czynsz do dziesiątego dnia miesiąca."),
	})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.MimeType)
	assert.Contains(t, doc.StoragePath, c.ID.String())

	hits, err := e.indexer.Query(t.Context(), c.ID, "czynsz", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, models.UnitID(models.UnitTypeDocument, doc.ID), hits[0].ID)
	assert.Equal(t, "Umowa najmu", hits[0].Unit.Title)

	gotDoc, rc, err := e.Documents.OpenDocument(t.Context(), owner, c.ID, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, gotDoc.ID)
	assert.Contains(t, string(body), "czynsz")
}

func TestDocumentService_UploadValidation(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	c, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Sprawa"})
	require.NoError(t, err)

	_, err = e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{OwnerID: owner, CaseID: c.ID, Filename: "a.txt"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{OwnerID: owner, CaseID: c.ID, Content: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{OwnerID: uuid.New(), CaseID: c.ID, Filename: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestDocumentService_UploadRollsBackWhenIndexDown(t *testing.T) {
	broken := &brokenIndex{failing: map[string]bool{}}
	e := newEnv(func(idx search.Index) search.Index {
		broken.next = idx
		return broken
	})
	owner := uuid.New()
	c, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Sprawa"})
	require.NoError(t, err)

	broken.failing["index"] = true
	_, err = e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{
		OwnerID:  owner,
		CaseID:   c.ID,
		Filename: "pozew.txt",
		Content:  []byte("treść pozwu"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrUnavailable)

	docs, err := e.Documents.ListDocuments(t.Context(), owner, c.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, e.blobs.Len())
}

func TestDocumentService_DeleteRebuildsRemaining(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	c, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Sprawa"})
	require.NoError(t, err)

	words := []string{"wypowiedzenie", "zadośćuczynienie", "przedawnienie", "pełnomocnictwo"}
	var docs []*models.Document
	for i, w := range words {
		doc, err := e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{
			OwnerID:  owner,
			CaseID:   c.ID,
			Filename: fmt.Sprintf("pismo-%d.txt", i),
			Content:  []byte("pismo dotyczy " + w),
		})
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	require.Equal(t, 4, e.memory.Len(c.ID))

	deleted := docs[1]
	require.NoError(t, e.Documents.DeleteDocument(t.Context(), owner, c.ID, deleted.ID))

	assert.Equal(t, 3, e.memory.Len(c.ID))

	hits, err := e.indexer.Query(t.Context(), c.ID, "pismo", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	deletedID := models.UnitID(models.UnitTypeDocument, deleted.ID)
	for _, h := range hits {
		assert.NotEqual(t, deletedID, h.ID)
	}

	hits, err = e.indexer.Query(t.Context(), c.ID, "zadośćuczynienie", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, _, err = e.Documents.OpenDocument(t.Context(), owner, c.ID, deleted.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_DocumentOfAnotherCase(t *testing.T) {
	e := newEnv()
	owner := uuid.New()
	first, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Pierwsza"})
	require.NoError(t, err)
	second, err := e.Cases.CreateCase(t.Context(), CreateCaseRequest{OwnerID: owner, Title: "Druga"})
	require.NoError(t, err)

	doc, err := e.Documents.UploadDocument(t.Context(), UploadDocumentRequest{
		OwnerID:  owner,
		CaseID:   first.ID,
		Filename: "a.txt",
		Content:  []byte("treść"),
	})
	require.NoError(t, err)

	_, _, err = e.Documents.OpenDocument(t.Context(), owner, second.ID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, e.Documents.DeleteDocument(t.Context(), owner, second.ID, doc.ID), ErrDocumentNotFound)
}
