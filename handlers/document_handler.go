package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lexcase-backend/models"
	"lexcase-backend/service"
)

// DocumentAPI is the document operations the handler needs; implemented by service.DocumentService
type DocumentAPI interface {
	UploadDocument(ctx context.Context, req service.UploadDocumentRequest) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerID, caseID uuid.UUID) ([]*models.Document, error)
	OpenDocument(ctx context.Context, ownerID, caseID, docID uuid.UUID) (*models.Document, io.ReadCloser, error)
	DeleteDocument(ctx context.Context, ownerID, caseID, docID uuid.UUID) error
}

// DocumentHandler handles HTTP requests for case documents
type DocumentHandler struct {
	docs        DocumentAPI
	maxFileSize int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docs DocumentAPI) *DocumentHandler {
	return &DocumentHandler{
		docs:        docs,
		maxFileSize: service.MaxUploadSize,
	}
}

// UploadDocument handles POST /api/cases/:id/documents (multipart: file, title, description)
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_READ_ERROR", err.Error())
		return
	}

	doc, err := h.docs.UploadDocument(c.Request.Context(), service.UploadDocumentRequest{
		OwnerID:     currentUser(c),
		CaseID:      caseID,
		Filename:    fileHeader.Filename,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, doc)
}

// ListDocuments handles GET /api/cases/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	docs, err := h.docs.ListDocuments(c.Request.Context(), currentUser(c), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, docs)
}

// DownloadDocument handles GET /api/cases/:id/documents/:docId
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	doc, reader, err := h.docs.OpenDocument(c.Request.Context(), currentUser(c), caseID, docID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, doc.Size, doc.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.Filename),
	})
}

// DeleteDocument handles DELETE /api/cases/:id/documents/:docId
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	if err := h.docs.DeleteDocument(c.Request.Context(), currentUser(c), caseID, docID); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": docID})
}
