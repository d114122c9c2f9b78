package database

import (
	"context"
	"fmt"

	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StatisticsRepository aggregates answer_log and wrong_log for display
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// QuestionStats returns how often a user answered a question right and wrong
func (r *StatisticsRepository) QuestionStats(ctx context.Context, userID string, questionID int64) (models.QuestionStats, error) {
	var stats models.QuestionStats
	query := r.db.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct_cnt,
			COALESCE(SUM(CASE WHEN is_correct THEN 0 ELSE 1 END), 0) AS wrong_cnt
		FROM answer_log
		WHERE user_id = ? AND question_id = ?
	`)
	if err := r.db.GetContext(ctx, &stats, query, userID, questionID); err != nil {
		return models.QuestionStats{}, fmt.Errorf("failed to get question stats: %w", err)
	}
	return stats, nil
}

// ChapterSummary returns per-chapter totals, answered and wrong counts for a user
func (r *StatisticsRepository) ChapterSummary(ctx context.Context, userID string) ([]models.ChapterSummary, error) {
	var totals []models.ChapterSummary
	err := r.db.SelectContext(ctx, &totals, `
		SELECT chapter, COUNT(*) AS total, 0 AS done_cnt, 0 AS wrong_cnt
		FROM questions
		GROUP BY chapter
		ORDER BY chapter
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter totals: %w", err)
	}

	done, err := r.countByChapter(ctx, `
		SELECT q.chapter AS chapter, COUNT(DISTINCT a.question_id) AS cnt
		FROM answer_log a
		JOIN questions q ON a.question_id = q.id
		WHERE a.user_id = ?
		GROUP BY q.chapter
	`, userID)
	if err != nil {
		return nil, err
	}

	wrong, err := r.countByChapter(ctx, `
		SELECT q.chapter AS chapter, COUNT(*) AS cnt
		FROM wrong_log w
		JOIN questions q ON w.question_id = q.id
		WHERE w.user_id = ?
		GROUP BY q.chapter
	`, userID)
	if err != nil {
		return nil, err
	}

	for i := range totals {
		s := &totals[i]
		s.Done = done[s.Chapter]
		s.Wrong = wrong[s.Chapter]
		s.Remaining = s.Total - s.Done
		if s.Remaining < 0 {
			s.Remaining = 0
		}
	}
	return totals, nil
}

func (r *StatisticsRepository) countByChapter(ctx context.Context, query, userID string) (map[string]int, error) {
	var rows []struct {
		Chapter string `db:"chapter"`
		Count   int    `db:"cnt"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to count by chapter: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Chapter] = row.Count
	}
	return counts, nil
}
