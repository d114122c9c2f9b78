package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data. Practice answers carry the question id and exam buttons carry
// the attempt key, so presses on old messages are recognized and ignored.
const (
	cbPurgeYes      = "purge:yes"
	cbPurgeNo       = "purge:no"
	cbModePrefix    = "mode:"
	cbChapterAll    = "ch:all"
	cbChapterPrefix = "ch:"
	cbTypeAll       = "ty:all"
	cbTypePrefix    = "ty:"
	cbPracticeNext  = "nav:next"
	cbPracticePrev  = "nav:prev"
	cbExamStart     = "ex:start"

	cbAnswer      = "ans"
	cbToggle      = "tog"
	cbSubmitMulti = "sub"
	cbExamAnswer  = "ea"
	cbExamToggle  = "et"
	cbExamNav     = "ex"

	examPrev   = "prev"
	examNext   = "next"
	examMark   = "mark"
	examSubmit = "submit"
)

// practiceData encodes "<kind>:<question id>:<choice index>"
func practiceData(kind string, questionID int64, value string) string {
	return fmt.Sprintf("%s:%d:%s", kind, questionID, value)
}

// examData encodes "<kind>:<attempt key>:<question index>:<choice index>"
func examData(kind, key string, index int, value string) string {
	return fmt.Sprintf("%s:%s:%d:%s", kind, key, index, value)
}

// examNav encodes "ex:<attempt key>:<action>"
func examNav(key, action string) string {
	return fmt.Sprintf("%s:%s:%s", cbExamNav, key, action)
}

func examKey(a *exam.Attempt) string {
	if len(a.ID) > 8 {
		return a.ID[:8]
	}
	return a.ID
}

// handleCallback dispatches an inline button press
func (b *Bot) handleCallback(ctx context.Context, s *session.Session, cb *tgbotapi.CallbackQuery) error {
	b.answerCallback(cb, "")
	messageID := 0
	if cb.Message != nil {
		messageID = cb.Message.MessageID
	}
	data := cb.Data

	switch {
	case data == cbPurgeYes:
		return b.handlePurge(ctx, s, true, messageID)
	case data == cbPurgeNo:
		return b.handlePurge(ctx, s, false, messageID)
	case data == cbPracticeNext:
		return b.showNext(ctx, s, 0)
	case data == cbPracticePrev:
		return b.showPrev(ctx, s, 0)
	case data == cbExamStart:
		return b.startExam(ctx, s)
	case strings.HasPrefix(data, cbModePrefix):
		m, err := models.ParseMode(strings.TrimPrefix(data, cbModePrefix))
		if err != nil {
			return err
		}
		b.applyMode(s, m, messageID)
		return nil
	case data == cbChapterAll:
		s.SetChapter("")
		b.reply(s.ChatID, messageID, chapterNote(s), nil)
		return nil
	case strings.HasPrefix(data, cbChapterPrefix):
		return b.pickChapter(ctx, s, strings.TrimPrefix(data, cbChapterPrefix), messageID)
	case data == cbTypeAll:
		s.SetType("")
		b.reply(s.ChatID, messageID, "Type filter: "+typeLabel(s.Type), nil)
		return nil
	case strings.HasPrefix(data, cbTypePrefix):
		t, err := models.ParseQuestionType(strings.TrimPrefix(data, cbTypePrefix))
		if err != nil {
			return err
		}
		s.SetType(t)
		b.reply(s.ChatID, messageID, "Type filter: "+typeLabel(s.Type), nil)
		return nil
	}

	parts := strings.SplitN(data, ":", 4)
	switch parts[0] {
	case cbAnswer, cbToggle, cbSubmitMulti:
		return b.handlePracticeButton(ctx, s, parts, messageID)
	case cbExamAnswer, cbExamToggle, cbExamNav:
		return b.handleExamButton(ctx, s, parts, messageID)
	}
	return fmt.Errorf("unknown callback data %q", data)
}

func (b *Bot) pickChapter(ctx context.Context, s *session.Session, idx string, messageID int) error {
	i, err := strconv.Atoi(idx)
	if err != nil {
		return fmt.Errorf("invalid chapter index %q: %v", idx, err)
	}
	chapters, err := b.deps.Questions.Chapters(ctx)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(chapters) {
		b.reply(s.ChatID, messageID, "That chapter list is out of date. Use /chapters again.", nil)
		return nil
	}
	s.SetChapter(chapters[i])
	b.reply(s.ChatID, messageID, chapterNote(s), nil)
	return nil
}

// handlePracticeButton handles "ans", "tog" and "sub" presses for the current question
func (b *Bot) handlePracticeButton(ctx context.Context, s *session.Session, parts []string, messageID int) error {
	if len(parts) < 3 {
		return fmt.Errorf("malformed practice callback %q", strings.Join(parts, ":"))
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid question id %q: %v", parts[1], err)
	}
	if cur, ok := s.Current(); !ok || cur != id || s.Mode == models.Exam {
		b.send(s.ChatID, "That question is no longer active. Use /q to see the current one.", nil)
		return nil
	}
	if parts[0] == cbSubmitMulti {
		pending := append(quiz.MultiChoice(nil), s.Pending...)
		return b.submitPractice(ctx, s, pending)
	}

	q, err := b.deps.Practice.Current(ctx, s)
	if err != nil {
		return err
	}
	value, err := choiceAt(*q, parts[2])
	if err != nil {
		return err
	}
	switch parts[0] {
	case cbAnswer:
		return b.submitPractice(ctx, s, quiz.Choice(value))
	default:
		s.Pending = s.Pending.Toggle(value)
		return b.showCurrent(ctx, s, messageID)
	}
}
