package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexcase-backend/models"
)

// LegalActRepository handles legal acts and their links to cases
type LegalActRepository struct {
	db *pgxpool.Pool
}

// NewLegalActRepository creates a new legal act repository
func NewLegalActRepository(db *pgxpool.Pool) *LegalActRepository {
	return &LegalActRepository{db: db}
}

const legalActColumns = `la.id, COALESCE(la.external_id, ''), la.title, la.publication, la.year,
	la.document_type, la.content, la.source_url, la.created_at, la.updated_at`

func scanLegalAct(row pgx.Row) (*models.LegalAct, error) {
	act := &models.LegalAct{}
	err := row.Scan(
		&act.ID,
		&act.ExternalID,
		&act.Title,
		&act.Publication,
		&act.Year,
		&act.DocumentType,
		&act.Content,
		&act.SourceURL,
		&act.CreatedAt,
		&act.UpdatedAt,
	)
	return act, err
}

// Upsert stores an act, refreshing the existing row when one with the same
// external ID is already known. Acts without an external ID always insert.
func (r *LegalActRepository) Upsert(ctx context.Context, act *models.LegalAct) error {
	query := `
		INSERT INTO legal_acts (external_id, title, publication, year, document_type, content, source_url)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			title = EXCLUDED.title,
			publication = EXCLUDED.publication,
			year = EXCLUDED.year,
			document_type = EXCLUDED.document_type,
			content = EXCLUDED.content,
			source_url = EXCLUDED.source_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		act.ExternalID,
		act.Title,
		act.Publication,
		act.Year,
		act.DocumentType,
		act.Content,
		act.SourceURL,
	).Scan(&act.ID, &act.CreatedAt, &act.UpdatedAt)
}

// GetByID retrieves an act
func (r *LegalActRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalAct, error) {
	query := `SELECT ` + legalActColumns + ` FROM legal_acts la WHERE la.id = $1`
	act, err := scanLegalAct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return act, nil
}

// Link attaches the act to a case. It reports false when the link already
// existed.
func (r *LegalActRepository) Link(ctx context.Context, caseID, actID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO case_legal_acts (case_id, legal_act_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, caseID, actID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCaseIDs returns every case the act is linked to
func (r *LegalActRepository) ListCaseIDs(ctx context.Context, actID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT case_id FROM case_legal_acts WHERE legal_act_id = $1 ORDER BY linked_at`, actID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Unlink detaches an act from a case
func (r *LegalActRepository) Unlink(ctx context.Context, caseID, actID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM case_legal_acts WHERE case_id = $1 AND legal_act_id = $2`, caseID, actID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCase retrieves the acts linked to a case in link order
func (r *LegalActRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.LegalAct, error) {
	query := `
		SELECT ` + legalActColumns + `
		FROM legal_acts la
		JOIN case_legal_acts cla ON cla.legal_act_id = la.id
		WHERE cla.case_id = $1
		ORDER BY cla.linked_at, la.id`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	acts := make([]*models.LegalAct, 0)
	for rows.Next() {
		act, err := scanLegalAct(rows)
		if err != nil {
			return nil, err
		}
		acts = append(acts, act)
	}
	return acts, rows.Err()
}
