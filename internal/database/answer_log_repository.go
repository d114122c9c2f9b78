package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const appendAnswerQuery = `
	INSERT INTO answer_log (user_id, question_id, is_correct, answer_text, ts)
	VALUES (:user_id, :question_id, :is_correct, :answer_text, :ts)
`

// AnswerLogRepository appends submissions to answer_log
type AnswerLogRepository struct {
	db *sqlx.DB
}

// NewAnswerLogRepository creates a new repository instance
func NewAnswerLogRepository(db *sqlx.DB) *AnswerLogRepository {
	return &AnswerLogRepository{db: db}
}

// Append inserts one entry. AnsweredAt defaults to now.
func (r *AnswerLogRepository) Append(ctx context.Context, entry *models.AnswerLogEntry) error {
	if entry.AnsweredAt.IsZero() {
		entry.AnsweredAt = time.Now()
	}
	if _, err := r.db.NamedExecContext(ctx, appendAnswerQuery, entry); err != nil {
		return fmt.Errorf("failed to log answer: %w", err)
	}
	return nil
}

// AppendGraded writes a graded batch in one transaction. Each entry is logged and
// its wrong ledger entry is cleared or incremented to match IsCorrect.
func (r *AnswerLogRepository) AppendGraded(ctx context.Context, entries []models.AnswerLogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin grading: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := range entries {
		e := &entries[i]
		if e.AnsweredAt.IsZero() {
			e.AnsweredAt = now
		}
		if _, err := tx.NamedExecContext(ctx, appendAnswerQuery, e); err != nil {
			return fmt.Errorf("failed to log answer: %w", err)
		}
		if e.IsCorrect {
			_, err = tx.ExecContext(ctx, tx.Rebind(clearWrongQuery), e.UserID, e.QuestionID)
		} else {
			_, err = tx.ExecContext(ctx, tx.Rebind(recordWrongQuery), e.UserID, e.QuestionID, e.AnsweredAt)
		}
		if err != nil {
			return fmt.Errorf("failed to update wrong log: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grading: %w", err)
	}
	return nil
}

// ListByUser returns a user's submissions, oldest first
func (r *AnswerLogRepository) ListByUser(ctx context.Context, userID string) ([]models.AnswerLogEntry, error) {
	entries := []models.AnswerLogEntry{}
	query := r.db.Rebind(`
		SELECT id, user_id, question_id, is_correct, answer_text, ts
		FROM answer_log
		WHERE user_id = ?
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get answer log: %w", err)
	}
	return entries, nil
}
