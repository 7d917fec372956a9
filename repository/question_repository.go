package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexcase-backend/models"
)

// QuestionRepository handles database operations for questions
type QuestionRepository struct {
	db *pgxpool.Pool
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, case_id, question_text, answer_text, sources, created_at, answered_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	q := &models.Question{}
	err := row.Scan(
		&q.ID,
		&q.CaseID,
		&q.QuestionText,
		&q.AnswerText,
		&q.Sources,
		&q.CreatedAt,
		&q.AnsweredAt,
	)
	return q, err
}

// Create inserts an unanswered question
func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	query := `
		INSERT INTO questions (case_id, question_text)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, q.CaseID, q.QuestionText).Scan(&q.ID, &q.CreatedAt)
}

// SetAnswer records the answer and its sources. It succeeds only once per
// question; later calls return ErrAlreadyAnswered.
func (r *QuestionRepository) SetAnswer(ctx context.Context, id uuid.UUID, answer string, sources models.Sources) (*models.Question, error) {
	query := `
		UPDATE questions
		SET answer_text = $2, sources = $3, answered_at = NOW()
		WHERE id = $1 AND answer_text IS NULL
		RETURNING ` + questionColumns

	q, err := scanQuestion(r.db.QueryRow(ctx, query, id, answer, sources))
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyAnswered
}

// GetByID retrieves a question of a case
func (r *QuestionRepository) GetByID(ctx context.Context, caseID, id uuid.UUID) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1 AND case_id = $2`
	q, err := scanQuestion(r.db.QueryRow(ctx, query, id, caseID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return q, nil
}

// ListByCase retrieves a case's questions, newest first
func (r *QuestionRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE case_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*models.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
