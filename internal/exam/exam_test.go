package exam

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

type fixture struct {
	db        *sqlx.DB
	questions *database.QuestionRepository
	answers   *database.AnswerLogRepository
	wrong     *database.WrongLogRepository
}

func newFixture(t *testing.T, bank ...models.Question) *fixture {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	f := &fixture{
		db:        db,
		questions: database.NewQuestionRepository(db),
		answers:   database.NewAnswerLogRepository(db),
		wrong:     database.NewWrongLogRepository(db),
	}
	if len(bank) > 0 {
		if err := f.questions.CreateBatch(context.Background(), bank); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return f
}

func q(t models.QuestionType, text, answer string) models.Question {
	question := models.Question{Chapter: "Ch1", Type: t, Text: text, Answer: answer}
	if t.IsChoice() {
		question.Options = "A. one||B. two||C. three"
	}
	return question
}

func oneOfEach() []models.Question {
	return []models.Question{
		q(models.FillBlank, "Capital of France", "Paris"),
		q(models.TrueFalse, "Water is wet", "对"),
		q(models.MultiChoice, "Pick A and B", "AB"),
		q(models.SingleChoice, "Pick A", "A"),
	}
}

func singleEachConfig() Config {
	cfg := DefaultConfig()
	for t, r := range cfg.Rules {
		r.Count = 1
		cfg.Rules[t] = r
	}
	return cfg
}

// TestBuildFollowsTypeOrderAndQuotas verifies group order, quotas and short pools.
func TestBuildFollowsTypeOrderAndQuotas(t *testing.T) {
	f := newFixture(t,
		q(models.TrueFalse, "tf1", "对"),
		q(models.SingleChoice, "s1", "A"),
		q(models.SingleChoice, "s2", "B"),
		q(models.SingleChoice, "s3", "C"),
		q(models.MultiChoice, "m1", "AB"),
		q(models.TrueFalse, "tf2", "错"),
	)
	cfg := Config{
		Rules: map[models.QuestionType]Rule{
			models.SingleChoice: {Count: 2, Points: 1},
			models.MultiChoice:  {Count: 2, Points: 2},
			models.TrueFalse:    {Count: 5, Points: 1},
			models.FillBlank:    {Count: 1, Points: 2},
		},
		Duration: time.Minute,
	}

	a, err := NewBuilder(f.questions, cfg).Build(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.Len() != 5 {
		t.Fatalf("expected 5 questions (2+1+2+0), got %d", a.Len())
	}
	want := []models.QuestionType{models.SingleChoice, models.SingleChoice, models.MultiChoice, models.TrueFalse, models.TrueFalse}
	seen := make(map[int64]bool)
	for i, question := range a.Paper() {
		if question.Type != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], question.Type)
		}
		if seen[question.ID] {
			t.Fatalf("question %d drawn twice", question.ID)
		}
		seen[question.ID] = true
	}
	if a.State() != InProgress || a.ID == "" {
		t.Fatalf("expected a started attempt with an ID, got %s %q", a.State(), a.ID)
	}
}

// TestBuildEmptyBank verifies an empty bank gives no paper.
func TestBuildEmptyBank(t *testing.T) {
	f := newFixture(t)
	_, err := NewBuilder(f.questions, DefaultConfig()).Build(context.Background(), time.Now())
	if !errors.Is(err, ErrEmptyPaper) {
		t.Fatalf("expected ErrEmptyPaper, got %v", err)
	}
}

// TestGradeScoresAndWritesLedger verifies scoring, logging and the ledger updates.
func TestGradeScoresAndWritesLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oneOfEach()...)
	cfg := singleEachConfig()

	a, err := NewBuilder(f.questions, cfg).Build(ctx, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	paper := a.Paper()
	single, multi := paper[0], paper[1]
	if err := f.wrong.RecordWrong(ctx, "alice", single.ID); err != nil {
		t.Fatalf("seed wrong: %v", err)
	}

	a.SetAnswer(0, quiz.Choice("a"))
	a.SetAnswer(1, quiz.MultiChoice{"A"})
	a.SetAnswer(2, quiz.Choice("√"))

	res, err := NewGrader(cfg, f.answers).Grade(ctx, "alice", a, TriggerSubmit)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Total != 2 || res.Max != 6 || res.Correct != 2 || len(res.Items) != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Items[1].Awarded != 0 || res.Items[1].Max != 2 || res.Items[1].Passed {
		t.Fatalf("unexpected multi item %+v", res.Items[1])
	}
	if a.State() != Finished || a.Result() != res {
		t.Fatalf("expected finished attempt holding its result")
	}

	if e, _ := f.wrong.Get(ctx, "alice", single.ID); e != nil {
		t.Fatalf("expected correct answer to clear the ledger, got %+v", e)
	}
	if e, _ := f.wrong.Get(ctx, "alice", multi.ID); e == nil || e.WrongCount != 1 {
		t.Fatalf("expected multi miss recorded once, got %+v", e)
	}
	if e, _ := f.wrong.Get(ctx, "alice", paper[3].ID); e == nil {
		t.Fatalf("expected unanswered blank recorded as wrong")
	}

	logs, err := f.answers.ListByUser(ctx, "alice")
	if err != nil || len(logs) != 4 {
		t.Fatalf("expected 4 answer log rows, got %d (%v)", len(logs), err)
	}

	if _, err := NewGrader(cfg, f.answers).Grade(ctx, "alice", a, TriggerSubmit); !errors.Is(err, ErrAttemptFinished) {
		t.Fatalf("expected ErrAttemptFinished on regrade, got %v", err)
	}
	if logs, _ := f.answers.ListByUser(ctx, "alice"); len(logs) != 4 {
		t.Fatalf("regrade wrote %d extra rows", len(logs)-4)
	}
	if err := a.SetAnswer(0, quiz.Choice("B")); !errors.Is(err, ErrAttemptFinished) {
		t.Fatalf("expected answers to be frozen, got %v", err)
	}
}

// TestPollGradesOnceAfterTimeout verifies the cooperative timeout.
func TestPollGradesOnceAfterTimeout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oneOfEach()...)
	cfg := singleEachConfig()
	cfg.Duration = 10 * time.Minute
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	a, err := NewBuilder(f.questions, cfg).Build(ctx, start)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g := NewGrader(cfg, f.answers)

	if graded, err := g.Poll(ctx, "bob", a, start.Add(9*time.Minute)); graded || err != nil {
		t.Fatalf("expected no grading before the deadline, got %v %v", graded, err)
	}
	if got := a.Remaining(start.Add(9 * time.Minute)); got != time.Minute {
		t.Fatalf("expected 1m remaining, got %s", got)
	}
	if graded, err := g.Poll(ctx, "bob", a, start.Add(10*time.Minute)); !graded || err != nil {
		t.Fatalf("expected grading at the deadline, got %v %v", graded, err)
	}
	if a.Result().Trigger != TriggerTimeout {
		t.Fatalf("expected timeout trigger, got %s", a.Result().Trigger)
	}
	if graded, _ := g.Poll(ctx, "bob", a, start.Add(time.Hour)); graded {
		t.Fatalf("expected second poll to do nothing")
	}
	if logs, _ := f.answers.ListByUser(ctx, "bob"); len(logs) != 4 {
		t.Fatalf("expected one grading pass, got %d rows", len(logs))
	}
	if a.Remaining(start.Add(time.Hour)) != 0 {
		t.Fatalf("remaining must not go negative")
	}
}

// TestSetAnswerOutOfRangePanics verifies the index precondition.
func TestSetAnswerOutOfRangePanics(t *testing.T) {
	a := newAttempt("x", []models.Question{q(models.FillBlank, "t", "a")}, time.Now(), time.Minute)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	a.SetAnswer(1, quiz.Text("a"))
}

// TestToggleMark verifies review marks flip.
func TestToggleMark(t *testing.T) {
	a := newAttempt("x", []models.Question{q(models.FillBlank, "t", "a")}, time.Now(), time.Minute)
	if !a.ToggleMark(0) || !a.Marked(0) {
		t.Fatalf("expected mark set")
	}
	if a.ToggleMark(0) || a.Marked(0) {
		t.Fatalf("expected mark cleared")
	}
}

// TestFormatClock verifies the countdown rendering.
func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{-5 * time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{61*time.Minute + 5*time.Second, "01:01:05"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.d); got != tc.want {
			t.Fatalf("FormatClock(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

// TestDescribeDefaultConfig verifies the rules text totals.
func TestDescribeDefaultConfig(t *testing.T) {
	text := Describe(DefaultConfig())
	for _, want := range []string{"Total: 100 questions, 130 points", "Time limit: 01:00:00", "Multiple choice: 20 questions, 2 point(s) each"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
}

// TestGradeFailureLeavesAttemptGradable verifies a failed write stores nothing and can be retried.
func TestGradeFailureLeavesAttemptGradable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, oneOfEach()...)
	cfg := singleEachConfig()

	a, err := NewBuilder(f.questions, cfg).Build(ctx, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a.SetAnswer(0, quiz.Choice("A"))

	if _, err := f.db.Exec("ALTER TABLE wrong_log RENAME TO wrong_log_off"); err != nil {
		t.Fatalf("disable ledger: %v", err)
	}
	g := NewGrader(cfg, f.answers)
	if _, err := g.Grade(ctx, "carol", a, TriggerSubmit); err == nil {
		t.Fatalf("expected grading to fail without the ledger table")
	}
	if a.State() != InProgress || a.Result() != nil {
		t.Fatalf("expected attempt back in progress, got %s", a.State())
	}
	if logs, _ := f.answers.ListByUser(ctx, "carol"); len(logs) != 0 {
		t.Fatalf("expected rollback of answer log, got %d rows", len(logs))
	}

	if _, err := f.db.Exec("ALTER TABLE wrong_log_off RENAME TO wrong_log"); err != nil {
		t.Fatalf("restore ledger: %v", err)
	}
	res, err := g.Grade(ctx, "carol", a, TriggerSubmit)
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if res.Correct != 1 || a.State() != Finished {
		t.Fatalf("unexpected result %+v", res)
	}
	if logs, _ := f.answers.ListByUser(ctx, "carol"); len(logs) != 4 {
		t.Fatalf("expected 4 answer log rows, got %d", len(logs))
	}
}
