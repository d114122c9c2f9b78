package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ErrModeNotSelectable is returned for modes that don't draw single questions
var ErrModeNotSelectable = errors.New("mode does not select practice questions")

const questionColumns = "q.id, q.chapter, q.q_type, q.text, q.options, q.answer"

// QuestionFilter narrows the bank for a selection mode. Empty Chapter and Type mean all.
type QuestionFilter struct {
	User    string
	Mode    models.Mode
	Chapter string
	Type    models.QuestionType
}

// predicate builds the FROM and WHERE parts shared by selection and counting
func (f QuestionFilter) predicate() (string, string, []interface{}, error) {
	from := "questions q"
	conds := []string{"1=1"}
	var args []interface{}

	switch f.Mode {
	case models.ChapterDrill, models.ShuffledDrill:
	case models.WrongRetry:
		from = "questions q JOIN wrong_log w ON q.id = w.question_id"
		conds = append(conds, "w.user_id = ?")
		args = append(args, f.User)
	default:
		return "", "", nil, fmt.Errorf("%w: %q", ErrModeNotSelectable, f.Mode)
	}

	if f.Mode.UsesChapter() && f.Chapter != "" {
		conds = append(conds, "q.chapter = ?")
		args = append(args, f.Chapter)
	}
	if f.Type != "" {
		conds = append(conds, "q.q_type = ?")
		args = append(args, f.Type)
	}
	return from, strings.Join(conds, " AND "), args, nil
}

// QuestionRepository handles database operations for the question bank
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Count returns the size of the whole bank
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM questions"); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	query := r.db.Rebind("SELECT " + questionColumns + " FROM questions q WHERE q.id = ?")
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &q, nil
}

// Chapters returns the distinct chapter labels in order
func (r *QuestionRepository) Chapters(ctx context.Context) ([]string, error) {
	var chapters []string
	if err := r.db.SelectContext(ctx, &chapters, "SELECT DISTINCT chapter FROM questions ORDER BY chapter"); err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}
	return chapters, nil
}

// Select picks one random question matching the filter and not in exclude.
// It returns nil, nil when nothing matches.
func (r *QuestionRepository) Select(ctx context.Context, f QuestionFilter, exclude []int64) (*models.Question, error) {
	from, where, args, err := f.predicate()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + questionColumns + " FROM " + from + " WHERE " + where
	if len(exclude) > 0 {
		query += " AND q.id NOT IN (?)"
		args = append(args, exclude)
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to expand exclusions: %w", err)
		}
	}
	query = r.db.Rebind(query + " ORDER BY RANDOM() LIMIT 1")

	var q models.Question
	err = r.db.GetContext(ctx, &q, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select question: %w", err)
	}
	return &q, nil
}

// CountMatching reports how many questions Select can draw from, ignoring exclusions
func (r *QuestionRepository) CountMatching(ctx context.Context, f QuestionFilter) (int, error) {
	from, where, args, err := f.predicate()
	if err != nil {
		return 0, err
	}
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM " + from + " WHERE " + where)
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

// RandomByType draws up to limit distinct questions of one type
func (r *QuestionRepository) RandomByType(ctx context.Context, t models.QuestionType, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	if limit <= 0 {
		return questions, nil
	}
	query := r.db.Rebind("SELECT " + questionColumns + " FROM questions q WHERE q.q_type = ? ORDER BY RANDOM() LIMIT ?")
	if err := r.db.SelectContext(ctx, &questions, query, t, limit); err != nil {
		return nil, fmt.Errorf("failed to get random %s questions: %w", t, err)
	}
	return questions, nil
}

// CreateBatch inserts questions in a single transaction
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []models.Question) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO questions (chapter, q_type, text, options, answer)
		VALUES (:chapter, :q_type, :text, :options, :answer)
	`
	for i := range questions {
		if _, err := tx.NamedExecContext(ctx, query, questions[i]); err != nil {
			return fmt.Errorf("failed to create question %q: %w", questions[i].Text, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
