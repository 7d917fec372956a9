package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"lexcase-backend/extract"
	"lexcase-backend/models"
	"lexcase-backend/repository"
	"lexcase-backend/storage"
)

// MaxUploadSize bounds a single uploaded file
const MaxUploadSize = 50 << 20

// DocumentService handles uploading, serving and removing case documents
type DocumentService struct {
	cases     CaseStore
	docs      DocumentStore
	storage   storage.Storage
	extractor TextExtractor
	indexer   *Indexer
	logger    *slog.Logger
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithCaseStore sets the case store
func DocumentWithCaseStore(cases CaseStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.cases = cases
	}
}

// DocumentWithDocumentStore sets the document store
func DocumentWithDocumentStore(docs DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.docs = docs
	}
}

// DocumentWithStorage sets the blob storage
func DocumentWithStorage(store storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.storage = store
	}
}

// DocumentWithExtractor sets the text extractor
func DocumentWithExtractor(extractor TextExtractor) DocumentServiceOption {
	return func(s *DocumentService) {
		s.extractor = extractor
	}
}

// DocumentWithIndexer sets the indexer
func DocumentWithIndexer(indexer *Indexer) DocumentServiceOption {
	return func(s *DocumentService) {
		s.indexer = indexer
	}
}

// DocumentWithLogger sets the logger
func DocumentWithLogger(logger *slog.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentService) ready() error {
	if s.cases == nil || s.docs == nil || s.storage == nil || s.extractor == nil || s.indexer == nil {
		return ErrDependencyNotSet
	}
	return nil
}

// UploadDocumentRequest represents an uploaded file
type UploadDocumentRequest struct {
	OwnerID     uuid.UUID
	CaseID      uuid.UUID
	Filename    string
	Title       string
	Description string
	ContentType string // declared type; inferred from the filename when empty or generic
	Content     []byte
}

// UploadDocument stores the file, extracts its text, records it and makes it
// searchable. If indexing fails the record and the stored file are removed
// again and the error is returned.
func (s *DocumentService) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	c, err := ownedCase(ctx, s.cases, req.OwnerID, req.CaseID)
	if err != nil {
		return nil, err
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if len(req.Content) > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadSize)
	}

	contentType := extract.ResolveContentType(req.ContentType, filename)
	doc := &models.Document{
		ID:          uuid.New(),
		CaseID:      c.ID,
		Title:       strings.TrimSpace(req.Title),
		Filename:    filename,
		Description: strings.TrimSpace(req.Description),
		MimeType:    contentType,
		Size:        int64(len(req.Content)),
	}
	doc.StoragePath = storage.DocumentPath(c.OwnerID, c.ID, doc.ID, filename)

	if err := s.storage.Put(ctx, doc.StoragePath, bytes.NewReader(req.Content), doc.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc.ContentText = s.extractor.Extract(req.Content, contentType)

	if err := s.docs.Create(ctx, doc); err != nil {
		s.removeBlob(ctx, doc)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if err := s.indexer.IndexUnit(ctx, c.ID, models.NewDocumentUnit(doc)); err != nil {
		if delErr := s.docs.Delete(ctx, doc.ID); delErr != nil {
			s.logger.Warn("failed to roll back document record", "document_id", doc.ID, "error", delErr)
		}
		s.removeBlob(ctx, doc)
		return nil, err
	}

	s.logger.Info("document uploaded",
		"case_id", c.ID,
		"document_id", doc.ID,
		"mime_type", contentType,
		"size", doc.Size,
		"text_chars", len([]rune(doc.ContentText)),
	)
	return doc, nil
}

func (s *DocumentService) removeBlob(ctx context.Context, doc *models.Document) {
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored file", "path", doc.StoragePath, "error", err)
	}
}

// ListDocuments returns a case's documents in upload order
func (s *DocumentService) ListDocuments(ctx context.Context, ownerID, caseID uuid.UUID) ([]*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return nil, err
	}
	return s.docs.ListByCase(ctx, caseID)
}

func (s *DocumentService) ownedDocument(ctx context.Context, ownerID, caseID, docID uuid.UUID) (*models.Document, error) {
	if _, err := ownedCase(ctx, s.cases, ownerID, caseID); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, caseID, docID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

// OpenDocument returns the document record and a reader over its stored
// file; the caller closes the reader
func (s *DocumentService) OpenDocument(ctx context.Context, ownerID, caseID, docID uuid.UUID) (*models.Document, io.ReadCloser, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}
	doc, err := s.ownedDocument(ctx, ownerID, caseID, docID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Get(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return doc, rc, nil
}

// DeleteDocument removes a document and rebuilds the case index from the
// remaining documents, legal acts and judgments
func (s *DocumentService) DeleteDocument(ctx context.Context, ownerID, caseID, docID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}
	doc, err := s.ownedDocument(ctx, ownerID, caseID, docID)
	if err != nil {
		return err
	}

	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.removeBlob(ctx, doc)

	if _, err := s.indexer.Rebuild(ctx, caseID); err != nil {
		return err
	}

	s.logger.Info("document deleted", "case_id", caseID, "document_id", doc.ID)
	return nil
}
