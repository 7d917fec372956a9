package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexcase-backend/models"
)

// DocumentRepository handles database operations for case documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, case_id, title, filename, description, mime_type, size, storage_path, content_text, created_at, updated_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&doc.Title,
		&doc.Filename,
		&doc.Description,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.ContentText,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	return doc, err
}

// Create inserts a document; the ID is assigned by the caller because it is
// part of the storage path
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			id, case_id, title, filename, description, mime_type, size, storage_path, content_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		doc.ID,
		doc.CaseID,
		doc.Title,
		doc.Filename,
		doc.Description,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.ContentText,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
}

// GetByID retrieves a document of a case
func (r *DocumentRepository) GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND case_id = $2`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, id, caseID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return doc, nil
}

// ListByCase retrieves a case's documents in upload order
func (r *DocumentRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE case_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Delete removes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
