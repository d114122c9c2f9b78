package exam

import (
	"context"
	"time"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/pkg/logger"
	"github.com/example/drillbot/pkg/models"
	"github.com/example/drillbot/pkg/monitoring"
	"go.uber.org/zap"
)

// Trigger is what ended an attempt
type Trigger string

const (
	TriggerSubmit  Trigger = "submit"
	TriggerTimeout Trigger = "timeout"
)

// ItemResult is the outcome of one paper question
type ItemResult struct {
	Index      int
	QuestionID int64
	Type       models.QuestionType
	Awarded    int
	Max        int
	Passed     bool
}

// Result is the graded attempt
type Result struct {
	Total      int
	Max        int
	Correct    int
	Items      []ItemResult
	Trigger    Trigger
	FinishedAt time.Time
}

// Grader scores attempts and writes them to the answer log and wrong ledger
type Grader struct {
	config  Config
	answers *database.AnswerLogRepository
}

// NewGrader creates a new grader
func NewGrader(config Config, answers *database.AnswerLogRepository) *Grader {
	return &Grader{config: config, answers: answers}
}

// Grade finishes the attempt and scores every question. Unanswered questions
// score zero and are recorded as wrong. The attempt is marked Finished before
// any write, so a concurrent second call returns ErrAttemptFinished and writes
// nothing. All writes share one transaction; if it fails the attempt is put
// back in progress with nothing stored, so it can be graded again.
func (g *Grader) Grade(ctx context.Context, user string, a *Attempt, trigger Trigger) (*Result, error) {
	answers, ok := a.finish()
	if !ok {
		return nil, ErrAttemptFinished
	}

	res := &Result{
		Items:      make([]ItemResult, 0, len(a.paper)),
		Trigger:    trigger,
		FinishedAt: time.Now(),
	}
	entries := make([]models.AnswerLogEntry, 0, len(a.paper))
	for i, q := range a.paper {
		ans := answers[i]
		correct := quiz.Check(q.Type, ans, q.Answer)
		points := g.config.PointsFor(q.Type)

		entries = append(entries, models.AnswerLogEntry{
			UserID:     user,
			QuestionID: q.ID,
			IsCorrect:  correct,
			AnswerText: answerText(ans),
			AnsweredAt: res.FinishedAt,
		})

		item := ItemResult{Index: i, QuestionID: q.ID, Type: q.Type, Max: points, Passed: correct}
		if correct {
			item.Awarded = points
			res.Total += points
			res.Correct++
		}
		res.Max += points
		res.Items = append(res.Items, item)
	}
	if err := g.answers.AppendGraded(ctx, entries); err != nil {
		a.reopen()
		logger.Log.Error("failed to store exam grading",
			zap.String("user", user),
			zap.String("attempt", a.ID),
			zap.Error(err))
		return nil, err
	}
	for _, it := range res.Items {
		monitoring.ObserveAnswer("exam", it.Passed)
	}
	a.setResult(res)

	monitoring.ExamsGraded.WithLabelValues(string(trigger)).Inc()
	if res.Max > 0 {
		monitoring.ExamScore.Observe(float64(res.Total) / float64(res.Max))
	}
	logger.Log.Info("exam graded",
		zap.String("user", user),
		zap.String("attempt", a.ID),
		zap.String("trigger", string(trigger)),
		zap.Int("score", res.Total),
		zap.Int("max", res.Max))
	return res, nil
}

// Poll grades an in-progress attempt whose time has run out. It is safe to call
// on every interaction and reports whether this call did the grading.
func (g *Grader) Poll(ctx context.Context, user string, a *Attempt, now time.Time) (bool, error) {
	if a == nil || a.State() != InProgress || !a.Expired(now) {
		return false, nil
	}
	if _, err := g.Grade(ctx, user, a, TriggerTimeout); err != nil {
		if err == ErrAttemptFinished {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func answerText(a quiz.Answer) string {
	if a == nil {
		return ""
	}
	return a.String()
}
