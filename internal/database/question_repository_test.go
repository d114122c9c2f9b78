package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/drillbot/pkg/models"
)

// TestSelectHonorsExclusions verifies exclusions accumulate until the pool is empty.
func TestSelectHonorsExclusions(t *testing.T) {
	db := newTestDB(t)
	seedQuestions(t, db,
		question("ch1", models.SingleChoice, "q1", "A"),
		question("ch1", models.SingleChoice, "q2", "B"),
		question("ch2", models.SingleChoice, "q3", "C"),
		question("ch2", models.SingleChoice, "q4", "D"),
		question("ch3", models.SingleChoice, "q5", "A"),
	)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	filter := QuestionFilter{User: "u", Mode: models.ChapterDrill}

	var exclude []int64
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		q, err := repo.Select(ctx, filter, exclude)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if q == nil {
			t.Fatalf("expected question on draw %d", i+1)
		}
		if seen[q.ID] {
			t.Fatalf("question %d returned although excluded", q.ID)
		}
		seen[q.ID] = true
		exclude = append(exclude, q.ID)
	}

	q, err := repo.Select(ctx, filter, exclude)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if q != nil {
		t.Fatalf("expected no question after exhausting the bank, got %d", q.ID)
	}
}

// TestSelectAndCountShareFilters verifies chapter, type and mode filters match between Select and CountMatching.
func TestSelectAndCountShareFilters(t *testing.T) {
	db := newTestDB(t)
	rows := seedQuestions(t, db,
		question("ch1", models.SingleChoice, "s1", "A"),
		question("ch1", models.TrueFalse, "t1", "对"),
		question("ch2", models.TrueFalse, "t2", "错"),
		question("ch2", models.FillBlank, "b1", "Paris"),
	)
	repo := NewQuestionRepository(db)
	ledger := NewWrongLogRepository(db)
	ctx := context.Background()

	if err := ledger.RecordWrong(ctx, "u", rows[1].ID); err != nil {
		t.Fatalf("record wrong: %v", err)
	}
	if err := ledger.RecordWrong(ctx, "other", rows[2].ID); err != nil {
		t.Fatalf("record wrong: %v", err)
	}

	cases := []struct {
		name   string
		filter QuestionFilter
		want   int
	}{
		{"all", QuestionFilter{Mode: models.ChapterDrill}, 4},
		{"chapter", QuestionFilter{Mode: models.ChapterDrill, Chapter: "ch2"}, 2},
		{"chapter and type", QuestionFilter{Mode: models.ChapterDrill, Chapter: "ch2", Type: models.TrueFalse}, 1},
		{"shuffled ignores chapter", QuestionFilter{Mode: models.ShuffledDrill, Chapter: "ch1", Type: models.TrueFalse}, 2},
		{"wrong retry scoped to user", QuestionFilter{User: "u", Mode: models.WrongRetry}, 1},
		{"wrong retry with chapter", QuestionFilter{User: "u", Mode: models.WrongRetry, Chapter: "ch2"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := repo.CountMatching(ctx, tc.filter)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, n)
			}
			q, err := repo.Select(ctx, tc.filter, nil)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if (q != nil) != (tc.want > 0) {
				t.Fatalf("select returned %v with %d matching", q, tc.want)
			}
		})
	}
}

// TestSelectRejectsExamMode verifies exam mode isn't a practice selection mode.
func TestSelectRejectsExamMode(t *testing.T) {
	repo := NewQuestionRepository(newTestDB(t))
	_, err := repo.Select(context.Background(), QuestionFilter{Mode: models.Exam}, nil)
	if !errors.Is(err, ErrModeNotSelectable) {
		t.Fatalf("expected ErrModeNotSelectable, got %v", err)
	}
}

// TestRandomByTypeCapsAtPool verifies draws never exceed the pool and never repeat.
func TestRandomByTypeCapsAtPool(t *testing.T) {
	db := newTestDB(t)
	seedQuestions(t, db,
		question("ch1", models.MultiChoice, "m1", "AB"),
		question("ch1", models.MultiChoice, "m2", "BC"),
		question("ch1", models.SingleChoice, "s1", "A"),
	)
	repo := NewQuestionRepository(db)

	got, err := repo.RandomByType(context.Background(), models.MultiChoice, 5)
	if err != nil {
		t.Fatalf("random by type: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("expected distinct questions")
	}
	for _, q := range got {
		if q.Type != models.MultiChoice {
			t.Fatalf("unexpected type %s", q.Type)
		}
	}
}

// TestChapters verifies distinct sorted chapters.
func TestChapters(t *testing.T) {
	db := newTestDB(t)
	seedQuestions(t, db,
		question("b", models.FillBlank, "x", "1"),
		question("a", models.FillBlank, "y", "2"),
		question("b", models.FillBlank, "z", "3"),
	)
	chapters, err := NewQuestionRepository(db).Chapters(context.Background())
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	if len(chapters) != 2 || chapters[0] != "a" || chapters[1] != "b" {
		t.Fatalf("unexpected chapters: %v", chapters)
	}
}
