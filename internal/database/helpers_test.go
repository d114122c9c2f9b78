package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(DriverSQLite, filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedQuestions(t *testing.T, db *sqlx.DB, questions ...models.Question) []models.Question {
	t.Helper()
	repo := NewQuestionRepository(db)
	if err := repo.CreateBatch(context.Background(), questions); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	var rows []models.Question
	if err := db.Select(&rows, "SELECT id, chapter, q_type, text, options, answer FROM questions ORDER BY id"); err != nil {
		t.Fatalf("load seeded questions: %v", err)
	}
	return rows
}

func question(chapter string, t models.QuestionType, text, answer string) models.Question {
	q := models.Question{Chapter: chapter, Type: t, Text: text, Answer: answer}
	if t.IsChoice() {
		q.Options = "A. one||B. two||C. three||D. four"
	}
	return q
}
