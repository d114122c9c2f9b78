package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/models"
)

func (b *Bot) startExam(ctx context.Context, s *session.Session) error {
	if s.ExamState() == exam.InProgress {
		b.send(s.ChatID, "An exam is already running. Use /submit to hand it in or /restart to discard it.", nil)
		return b.showExamQuestion(s, 0)
	}
	a, err := b.deps.Builder.Build(ctx, b.now())
	if errors.Is(err, exam.ErrEmptyPaper) {
		b.send(s.ChatID, "The question bank has no questions for an exam.", nil)
		return nil
	}
	if err != nil {
		return err
	}
	s.SetMode(models.Exam)
	if err := s.StartExam(a); err != nil {
		return err
	}
	b.send(s.ChatID, fmt.Sprintf("Exam started: %d questions, %s. Good luck!",
		a.Len(), exam.FormatClock(a.Duration)), nil)
	return b.showExamQuestion(s, 0)
}

// showExamOrRules shows the running exam, or the rules with a start button
func (b *Bot) showExamOrRules(s *session.Session, messageID int) error {
	if s.ExamState() == exam.InProgress {
		return b.showExamQuestion(s, messageID)
	}
	b.applyMode(s, models.Exam, messageID)
	return nil
}

func (b *Bot) showExamQuestion(s *session.Session, messageID int) error {
	text, markup := renderExamQuestion(s.Exam, s.ExamView, b.now())
	b.reply(s.ChatID, messageID, text, markup)
	return nil
}

func (b *Bot) submitExam(ctx context.Context, s *session.Session, messageID int) error {
	if s.ExamState() != exam.InProgress {
		b.send(s.ChatID, "There is no exam in progress. Use /exam to start one.", nil)
		return nil
	}
	res, err := b.deps.Grader.Grade(ctx, s.User, s.Exam, exam.TriggerSubmit)
	if errors.Is(err, exam.ErrAttemptFinished) {
		s.ResetExam()
		return nil
	}
	if err != nil {
		return err
	}
	s.ResetExam()
	b.reply(s.ChatID, messageID, renderResult(res), nil)
	return nil
}

// handleExamButton handles "ea", "et" and "ex" presses for the running attempt
func (b *Bot) handleExamButton(ctx context.Context, s *session.Session, parts []string, messageID int) error {
	if len(parts) < 3 {
		return fmt.Errorf("malformed exam callback %q", strings.Join(parts, ":"))
	}
	if s.ExamState() != exam.InProgress || examKey(s.Exam) != parts[1] {
		b.send(s.ChatID, "That exam is over. Use /exam to start a new one.", nil)
		return nil
	}
	a := s.Exam

	if parts[0] == cbExamNav {
		switch parts[2] {
		case examPrev:
			if s.ExamView > 0 {
				s.ExamView--
			}
		case examNext:
			if s.ExamView < a.Len()-1 {
				s.ExamView++
			}
		case examMark:
			a.ToggleMark(s.ExamView)
		case examSubmit:
			return b.submitExam(ctx, s, messageID)
		default:
			return fmt.Errorf("unknown exam action %q", parts[2])
		}
		return b.showExamQuestion(s, messageID)
	}

	if len(parts) < 4 {
		return fmt.Errorf("malformed exam answer %q", strings.Join(parts, ":"))
	}
	i, err := strconv.Atoi(parts[2])
	if err != nil || i < 0 || i >= a.Len() {
		return fmt.Errorf("invalid exam question index %q", parts[2])
	}
	value, err := choiceAt(a.Paper()[i], parts[3])
	if err != nil {
		return err
	}

	var ans quiz.Answer = quiz.Choice(value)
	if parts[0] == cbExamToggle {
		selected, _ := a.Answer(i).(quiz.MultiChoice)
		ans = selected.Toggle(value)
	}
	if err := a.SetAnswer(i, ans); err != nil {
		return err
	}
	s.ExamView = i
	return b.showExamQuestion(s, messageID)
}
