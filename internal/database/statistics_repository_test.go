package database

import (
	"context"
	"testing"

	"github.com/example/drillbot/pkg/models"
)

// TestQuestionStatsAndChapterSummary verifies aggregates over both logs.
func TestQuestionStatsAndChapterSummary(t *testing.T) {
	db := newTestDB(t)
	rows := seedQuestions(t, db,
		question("ch1", models.SingleChoice, "q1", "A"),
		question("ch1", models.SingleChoice, "q2", "B"),
		question("ch2", models.TrueFalse, "q3", "对"),
	)
	answers := NewAnswerLogRepository(db)
	ledger := NewWrongLogRepository(db)
	stats := NewStatisticsRepository(db)
	ctx := context.Background()

	log := func(qid int64, correct bool) {
		t.Helper()
		if err := answers.Append(ctx, &models.AnswerLogEntry{UserID: "u", QuestionID: qid, IsCorrect: correct, AnswerText: "x"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	log(rows[0].ID, false)
	log(rows[0].ID, true)
	log(rows[0].ID, true)
	log(rows[2].ID, false)
	if err := ledger.RecordWrong(ctx, "u", rows[2].ID); err != nil {
		t.Fatalf("record wrong: %v", err)
	}

	qs, err := stats.QuestionStats(ctx, "u", rows[0].ID)
	if err != nil {
		t.Fatalf("question stats: %v", err)
	}
	if qs.Correct != 2 || qs.Wrong != 1 {
		t.Fatalf("unexpected stats: %+v", qs)
	}
	empty, err := stats.QuestionStats(ctx, "nobody", rows[0].ID)
	if err != nil {
		t.Fatalf("question stats: %v", err)
	}
	if empty.Correct != 0 || empty.Wrong != 0 {
		t.Fatalf("expected zero stats, got %+v", empty)
	}

	summary, err := stats.ChapterSummary(ctx, "u")
	if err != nil {
		t.Fatalf("chapter summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(summary))
	}
	ch1, ch2 := summary[0], summary[1]
	if ch1.Chapter != "ch1" || ch1.Total != 2 || ch1.Done != 1 || ch1.Wrong != 0 || ch1.Remaining != 1 {
		t.Fatalf("unexpected ch1 summary: %+v", ch1)
	}
	if ch2.Total != 1 || ch2.Done != 1 || ch2.Wrong != 1 || ch2.Remaining != 0 {
		t.Fatalf("unexpected ch2 summary: %+v", ch2)
	}
}
