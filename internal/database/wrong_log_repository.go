package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const (
	recordWrongQuery = `
		INSERT INTO wrong_log (user_id, question_id, wrong_count, last_wrong_ts)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			wrong_count = wrong_log.wrong_count + 1,
			last_wrong_ts = excluded.last_wrong_ts
	`
	clearWrongQuery = "DELETE FROM wrong_log WHERE user_id = ? AND question_id = ?"
)

// WrongLogRepository is the per-user wrong-answer ledger
type WrongLogRepository struct {
	db *sqlx.DB
}

// NewWrongLogRepository creates a new repository instance
func NewWrongLogRepository(db *sqlx.DB) *WrongLogRepository {
	return &WrongLogRepository{db: db}
}

// RecordWrong creates the (user, question) entry with count 1 or increments it.
// A single upsert keeps at most one row per pair.
func (r *WrongLogRepository) RecordWrong(ctx context.Context, userID string, questionID int64) error {
	query := r.db.Rebind(recordWrongQuery)
	if _, err := r.db.ExecContext(ctx, query, userID, questionID, time.Now()); err != nil {
		return fmt.Errorf("failed to record wrong answer: %w", err)
	}
	return nil
}

// ClearWrong removes the entry if present
func (r *WrongLogRepository) ClearWrong(ctx context.Context, userID string, questionID int64) error {
	query := r.db.Rebind(clearWrongQuery)
	if _, err := r.db.ExecContext(ctx, query, userID, questionID); err != nil {
		return fmt.Errorf("failed to clear wrong answer: %w", err)
	}
	return nil
}

// Get returns the ledger entry for a pair, or nil when the question isn't in the ledger
func (r *WrongLogRepository) Get(ctx context.Context, userID string, questionID int64) (*models.WrongLogEntry, error) {
	var entry models.WrongLogEntry
	query := r.db.Rebind(`
		SELECT id, user_id, question_id, wrong_count, last_wrong_ts
		FROM wrong_log
		WHERE user_id = ? AND question_id = ?
	`)
	err := r.db.GetContext(ctx, &entry, query, userID, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wrong log entry: %w", err)
	}
	return &entry, nil
}

// CountByUser returns the number of ledger rows for a user
func (r *WrongLogRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM wrong_log WHERE user_id = ?")
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count wrong answers: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's wrong questions ordered by chapter, type, most recent miss
func (r *WrongLogRepository) ListByUser(ctx context.Context, userID string) ([]models.WrongQuestion, error) {
	rows := []models.WrongQuestion{}
	query := r.db.Rebind(`
		SELECT ` + questionColumns + `, w.wrong_count, w.last_wrong_ts
		FROM wrong_log w
		JOIN questions q ON w.question_id = q.id
		WHERE w.user_id = ?
		ORDER BY q.chapter, q.q_type, w.last_wrong_ts DESC
	`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list wrong answers: %w", err)
	}
	return rows, nil
}

// PurgeUser deletes every ledger and answer-log row of a user. This can't be undone;
// callers confirm first.
func (r *WrongLogRepository) PurgeUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin purge: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM wrong_log WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("failed to purge wrong log: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM answer_log WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("failed to purge answer log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit purge: %w", err)
	}
	return nil
}
