package practice

import (
	"context"
	"errors"
	"time"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/logger"
	"github.com/example/drillbot/pkg/models"
	"github.com/example/drillbot/pkg/monitoring"
	"go.uber.org/zap"
)

var (
	// ErrNoQuestions means nothing matches the session's mode and filters
	ErrNoQuestions = errors.New("no questions match the current filters")
	// ErrExhausted means every matching question has been shown in this run
	ErrExhausted = errors.New("all matching questions have been shown")
)

// Feedback is the outcome of one practice answer
type Feedback struct {
	Correct   bool
	Canonical string
	Stats     models.QuestionStats
}

// Options tunes the practice flow
type Options struct {
	// AllowRepeats lets Next start over instead of returning ErrExhausted
	AllowRepeats bool
}

// Service drives practice sessions over the question bank
type Service struct {
	questions *database.QuestionRepository
	answers   *database.AnswerLogRepository
	wrong     *database.WrongLogRepository
	stats     *database.StatisticsRepository
	opts      Options
	now       func() time.Time
}

// NewService creates a new practice service
func NewService(
	questions *database.QuestionRepository,
	answers *database.AnswerLogRepository,
	wrong *database.WrongLogRepository,
	stats *database.StatisticsRepository,
	opts Options,
) *Service {
	return &Service{
		questions: questions,
		answers:   answers,
		wrong:     wrong,
		stats:     stats,
		opts:      opts,
		now:       time.Now,
	}
}

// Current returns the question being shown, drawing the first one if needed
func (p *Service) Current(ctx context.Context, s *session.Session) (*models.Question, error) {
	if id, ok := s.Current(); ok {
		return p.questions.GetByID(ctx, id)
	}
	return p.draw(ctx, s, nil)
}

// Next moves forward through history, or draws a question not yet shown
func (p *Service) Next(ctx context.Context, s *session.Session) (*models.Question, error) {
	if s.Index+1 < len(s.History) {
		s.Index++
		s.Pending = nil
		return p.questions.GetByID(ctx, s.History[s.Index])
	}

	q, err := p.draw(ctx, s, s.History)
	if !errors.Is(err, ErrNoQuestions) || len(s.History) == 0 {
		return q, err
	}
	// the pool itself can empty out, e.g. wrong retry after clearing every entry
	if n, err := p.Available(ctx, s); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNoQuestions
	}
	if !p.opts.AllowRepeats {
		return nil, ErrExhausted
	}
	return p.draw(ctx, s, nil)
}

// Prev moves back one question. It reports false at the start of history.
func (p *Service) Prev(s *session.Session) bool {
	if s.Index <= 0 {
		return false
	}
	s.Index--
	s.Pending = nil
	return true
}

// Available counts the questions matching the session's filters
func (p *Service) Available(ctx context.Context, s *session.Session) (int, error) {
	return p.questions.CountMatching(ctx, s.Filter())
}

// Submit checks an answer to the current question and updates both ledgers.
// Empty answers are rejected with quiz.ErrEmptyAnswer and leave no trace.
func (p *Service) Submit(ctx context.Context, s *session.Session, ans quiz.Answer) (*Feedback, error) {
	id, ok := s.Current()
	if !ok {
		return nil, ErrNoQuestions
	}
	q, err := p.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(q.Type, ans); err != nil {
		return nil, err
	}

	correct := quiz.Check(q.Type, ans, q.Answer)
	entry := &models.AnswerLogEntry{
		UserID:     s.User,
		QuestionID: q.ID,
		IsCorrect:  correct,
		AnswerText: ans.String(),
		AnsweredAt: p.now(),
	}
	if err := p.answers.Append(ctx, entry); err != nil {
		return nil, err
	}
	if correct {
		err = p.wrong.ClearWrong(ctx, s.User, q.ID)
	} else {
		err = p.wrong.RecordWrong(ctx, s.User, q.ID)
	}
	if err != nil {
		return nil, err
	}
	monitoring.ObserveAnswer("practice", correct)
	s.Pending = nil

	stats, err := p.stats.QuestionStats(ctx, s.User, q.ID)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("practice answer",
		zap.String("user", s.User),
		zap.Int64("question", q.ID),
		zap.Bool("correct", correct))
	return &Feedback{Correct: correct, Canonical: q.Answer, Stats: stats}, nil
}

// Elapsed is the time since the first question of this practice run
func (p *Service) Elapsed(s *session.Session) time.Duration {
	if s.PracticeStart.IsZero() {
		return 0
	}
	return p.now().Sub(s.PracticeStart)
}

func (p *Service) draw(ctx context.Context, s *session.Session, exclude []int64) (*models.Question, error) {
	q, err := p.questions.Select(ctx, s.Filter(), exclude)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNoQuestions
	}
	if s.PracticeStart.IsZero() {
		s.PracticeStart = p.now()
	}
	s.Push(q.ID)
	return q, nil
}
