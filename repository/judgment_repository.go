package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexcase-backend/models"
)

// JudgmentRepository handles judgments and their links to cases
type JudgmentRepository struct {
	db *pgxpool.Pool
}

// NewJudgmentRepository creates a new judgment repository
func NewJudgmentRepository(db *pgxpool.Pool) *JudgmentRepository {
	return &JudgmentRepository{db: db}
}

const judgmentColumns = `j.id, COALESCE(j.external_id, ''), j.court_name, j.court_type, j.case_number,
	j.judgment_date, j.content, j.source_url, j.created_at, j.updated_at`

func scanJudgment(row pgx.Row) (*models.Judgment, error) {
	j := &models.Judgment{}
	err := row.Scan(
		&j.ID,
		&j.ExternalID,
		&j.CourtName,
		&j.CourtType,
		&j.CaseNumber,
		&j.JudgmentDate,
		&j.Content,
		&j.SourceURL,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

// Upsert stores a judgment, refreshing the existing row with the same
// external ID. Judgments without an external ID always insert.
func (r *JudgmentRepository) Upsert(ctx context.Context, j *models.Judgment) error {
	query := `
		INSERT INTO judgments (external_id, court_name, court_type, case_number, judgment_date, content, source_url)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			court_name = EXCLUDED.court_name,
			court_type = EXCLUDED.court_type,
			case_number = EXCLUDED.case_number,
			judgment_date = EXCLUDED.judgment_date,
			content = EXCLUDED.content,
			source_url = EXCLUDED.source_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		j.ExternalID,
		j.CourtName,
		j.CourtType,
		j.CaseNumber,
		j.JudgmentDate,
		j.Content,
		j.SourceURL,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

// GetByID retrieves a judgment
func (r *JudgmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Judgment, error) {
	query := `SELECT ` + judgmentColumns + ` FROM judgments j WHERE j.id = $1`
	j, err := scanJudgment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return j, nil
}

// Link attaches the judgment to a case. It reports false when the link already
// existed.
func (r *JudgmentRepository) Link(ctx context.Context, caseID, judgmentID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO case_judgments (case_id, judgment_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, caseID, judgmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCaseIDs returns every case the judgment is linked to
func (r *JudgmentRepository) ListCaseIDs(ctx context.Context, judgmentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT case_id FROM case_judgments WHERE judgment_id = $1 ORDER BY linked_at`, judgmentID)
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

// Unlink detaches a judgment from a case
func (r *JudgmentRepository) Unlink(ctx context.Context, caseID, judgmentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM case_judgments WHERE case_id = $1 AND judgment_id = $2`, caseID, judgmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCase retrieves the judgments linked to a case in link order
func (r *JudgmentRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Judgment, error) {
	query := `
		SELECT ` + judgmentColumns + `
		FROM judgments j
		JOIN case_judgments cj ON cj.judgment_id = j.id
		WHERE cj.case_id = $1
		ORDER BY cj.linked_at, j.id`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	judgments := make([]*models.Judgment, 0)
	for rows.Next() {
		j, err := scanJudgment(rows)
		if err != nil {
			return nil, err
		}
		judgments = append(judgments, j)
	}
	return judgments, rows.Err()
}
