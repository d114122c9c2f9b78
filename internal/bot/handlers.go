package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/practice"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Practice commands:
/q - show the current question
/next, /prev - move through questions
/mode chapter|wrong|shuffle|exam - choose how questions are picked
/chapters - pick a chapter
/chapter <name|all> - set the chapter filter
/type single|multi|tf|blank|all - set the type filter
/count - questions matching the filters
/user <name> - switch the user your progress is saved under

Progress:
/summary - progress per chapter
/wrong - questions you most recently got wrong
/clear - delete your answer history and wrong list

Exam:
/exam - start a timed mock exam
/submit - hand in the paper
/restart - discard the exam`

// handleCommand dispatches a slash command
func (b *Bot) handleCommand(ctx context.Context, s *session.Session, message *tgbotapi.Message) error {
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.send(s.ChatID, fmt.Sprintf("Welcome! You are practicing as %q.\n\n%s", s.User, helpText), nil)
		return nil
	case "help":
		b.send(s.ChatID, helpText, nil)
		return nil
	case "user":
		return b.handleUser(s, args)
	case "mode":
		return b.handleMode(s, args)
	case "chapters":
		return b.handleChapters(ctx, s)
	case "chapter":
		return b.handleChapter(s, args)
	case "type":
		return b.handleType(s, args)
	case "count":
		return b.handleCount(ctx, s)
	case "q":
		return b.showCurrent(ctx, s, 0)
	case "next":
		return b.showNext(ctx, s, 0)
	case "prev":
		return b.showPrev(ctx, s, 0)
	case "wrong":
		return b.handleWrongSummary(ctx, s)
	case "summary":
		return b.handleSummary(ctx, s)
	case "clear":
		s.RequestPurge()
		markup := createKeyboard([][]MenuButton{{
			{Text: "🗑 Yes, delete", CallbackData: cbPurgeYes},
			{Text: "Cancel", CallbackData: cbPurgeNo},
		}})
		b.send(s.ChatID, fmt.Sprintf("Delete all answer history and wrong questions of %q? This cannot be undone.", s.User), &markup)
		return nil
	case "exam":
		return b.startExam(ctx, s)
	case "submit":
		return b.submitExam(ctx, s, 0)
	case "restart":
		s.ResetExam()
		b.send(s.ChatID, "Exam discarded. Use /exam to start a new one.", nil)
		return nil
	}
	b.send(s.ChatID, "Unknown command. Use /help to see what I can do.", nil)
	return nil
}

// handleText treats plain text as a typed answer
func (b *Bot) handleText(ctx context.Context, s *session.Session, message *tgbotapi.Message) error {
	text := message.Text
	if s.ExamState() == exam.InProgress {
		q := s.Exam.Paper()[s.ExamView]
		if q.Type != models.FillBlank {
			b.send(s.ChatID, "Use the buttons to answer this question.", nil)
			return nil
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if err := s.Exam.SetAnswer(s.ExamView, quiz.Text(text)); err != nil {
			return err
		}
		return b.showExamQuestion(s, 0)
	}

	if s.Mode == models.Exam {
		b.send(s.ChatID, "Use /exam to start the mock exam.", nil)
		return nil
	}
	if _, ok := s.Current(); !ok {
		b.send(s.ChatID, "Use /q to get a question first.", nil)
		return nil
	}
	q, err := b.deps.Practice.Current(ctx, s)
	if err != nil {
		return err
	}
	if q.Type != models.FillBlank {
		b.send(s.ChatID, "Use the buttons to answer this question.", nil)
		return nil
	}
	return b.submitPractice(ctx, s, quiz.Text(text))
}

func (b *Bot) handleUser(s *session.Session, name string) error {
	if name == "" {
		b.send(s.ChatID, fmt.Sprintf("Current user: %s\nUse /user <name> to switch.", s.User), nil)
		return nil
	}
	if err := s.SetUser(name); err != nil {
		b.send(s.ChatID, "The user name cannot be empty.", nil)
		return nil
	}
	b.send(s.ChatID, fmt.Sprintf("Progress is now saved as %q.", s.User), nil)
	return nil
}

func (b *Bot) handleMode(s *session.Session, arg string) error {
	if arg == "" {
		markup := createKeyboard([][]MenuButton{
			{{Text: "📖 Chapter drill", CallbackData: cbModePrefix + string(models.ChapterDrill)}},
			{{Text: "❌ Wrong retry", CallbackData: cbModePrefix + string(models.WrongRetry)}},
			{{Text: "🔀 Shuffled drill", CallbackData: cbModePrefix + string(models.ShuffledDrill)}},
			{{Text: "📝 Mock exam", CallbackData: cbModePrefix + string(models.Exam)}},
		})
		b.send(s.ChatID, "Current mode: "+modeLabel(s.Mode)+"\nChoose a mode:", &markup)
		return nil
	}
	m, err := models.ParseMode(arg)
	if err != nil {
		b.send(s.ChatID, "Unknown mode. Use chapter, wrong, shuffle or exam.", nil)
		return nil
	}
	b.applyMode(s, m, 0)
	return nil
}

func (b *Bot) applyMode(s *session.Session, m models.Mode, messageID int) {
	s.SetMode(m)
	if m == models.Exam {
		markup := createKeyboard([][]MenuButton{{{Text: "▶️ Start exam", CallbackData: cbExamStart}}})
		b.reply(s.ChatID, messageID, exam.Describe(b.deps.ExamConfig), &markup)
		return
	}
	b.reply(s.ChatID, messageID, "Mode: "+modeLabel(m)+". Use /q for a question.", nil)
}

func (b *Bot) handleChapters(ctx context.Context, s *session.Session) error {
	chapters, err := b.deps.Questions.Chapters(ctx)
	if err != nil {
		return err
	}
	rows := [][]MenuButton{{{Text: "All chapters", CallbackData: cbChapterAll}}}
	for i, ch := range chapters {
		rows = append(rows, []MenuButton{{Text: ch, CallbackData: fmt.Sprintf("%s%d", cbChapterPrefix, i)}})
	}
	markup := createKeyboard(rows)
	b.send(s.ChatID, "Current chapter: "+orAll(s.Chapter)+"\nChoose a chapter:", &markup)
	return nil
}

func (b *Bot) handleChapter(s *session.Session, name string) error {
	if name == "" {
		b.send(s.ChatID, "Current chapter: "+orAll(s.Chapter)+"\nUse /chapter <name> or /chapter all.", nil)
		return nil
	}
	if strings.EqualFold(name, "all") {
		name = ""
	}
	s.SetChapter(name)
	b.send(s.ChatID, chapterNote(s), nil)
	return nil
}

func (b *Bot) handleType(s *session.Session, arg string) error {
	if arg == "" {
		rows := [][]MenuButton{{{Text: "All types", CallbackData: cbTypeAll}}}
		for _, t := range models.TypeOrder {
			rows = append(rows, []MenuButton{{Text: t.Label(), CallbackData: cbTypePrefix + string(t)}})
		}
		markup := createKeyboard(rows)
		b.send(s.ChatID, "Current type: "+typeLabel(s.Type)+"\nChoose a question type:", &markup)
		return nil
	}
	if strings.EqualFold(arg, "all") {
		s.SetType("")
	} else {
		t, err := models.ParseQuestionType(arg)
		if err != nil {
			b.send(s.ChatID, "Unknown type. Use single, multi, tf, blank or all.", nil)
			return nil
		}
		s.SetType(t)
	}
	b.send(s.ChatID, "Type filter: "+typeLabel(s.Type), nil)
	return nil
}

func (b *Bot) handleCount(ctx context.Context, s *session.Session) error {
	if s.Mode == models.Exam {
		b.send(s.ChatID, exam.Describe(b.deps.ExamConfig), nil)
		return nil
	}
	n, err := b.deps.Practice.Available(ctx, s)
	if err != nil {
		return err
	}
	b.send(s.ChatID, fmt.Sprintf("%d question(s) match: %s", n, filterLine(s)), nil)
	return nil
}

func (b *Bot) handleWrongSummary(ctx context.Context, s *session.Session) error {
	list, err := b.deps.Wrong.ListByUser(ctx, s.User)
	if err != nil {
		return err
	}
	b.send(s.ChatID, renderWrongList(s.User, list), nil)
	return nil
}

func (b *Bot) handleSummary(ctx context.Context, s *session.Session) error {
	rows, err := b.deps.Stats.ChapterSummary(ctx, s.User)
	if err != nil {
		return err
	}
	b.send(s.ChatID, renderChapterSummary(s.User, rows), nil)
	return nil
}

// showCurrent renders the practice question, drawing one when none is shown yet
func (b *Bot) showCurrent(ctx context.Context, s *session.Session, messageID int) error {
	if s.Mode == models.Exam {
		return b.showExamOrRules(s, messageID)
	}
	q, err := b.deps.Practice.Current(ctx, s)
	return b.renderPracticeResult(ctx, s, messageID, q, err)
}

func (b *Bot) showNext(ctx context.Context, s *session.Session, messageID int) error {
	if s.Mode == models.Exam {
		return b.showExamOrRules(s, messageID)
	}
	q, err := b.deps.Practice.Next(ctx, s)
	return b.renderPracticeResult(ctx, s, messageID, q, err)
}

func (b *Bot) showPrev(ctx context.Context, s *session.Session, messageID int) error {
	if s.Mode == models.Exam {
		return b.showExamOrRules(s, messageID)
	}
	if !b.deps.Practice.Prev(s) {
		b.send(s.ChatID, "This is the first question.", nil)
		return nil
	}
	return b.showCurrent(ctx, s, messageID)
}

func (b *Bot) renderPracticeResult(ctx context.Context, s *session.Session, messageID int, q *models.Question, err error) error {
	switch {
	case errors.Is(err, practice.ErrNoQuestions):
		msg := "No questions match: " + filterLine(s)
		if s.Mode == models.WrongRetry {
			msg = "Your wrong list is empty for these filters. 🎉"
		}
		b.send(s.ChatID, msg, nil)
		return nil
	case errors.Is(err, practice.ErrExhausted):
		b.send(s.ChatID, "You have seen every matching question. Change the filters or use /mode to start over.", nil)
		return nil
	case err != nil:
		return err
	}
	total, err := b.deps.Practice.Available(ctx, s)
	if err != nil {
		return err
	}
	text, markup := renderPracticeQuestion(s, q, total, b.deps.Practice.Elapsed(s))
	b.reply(s.ChatID, messageID, text, markup)
	return nil
}

func (b *Bot) submitPractice(ctx context.Context, s *session.Session, ans quiz.Answer) error {
	fb, err := b.deps.Practice.Submit(ctx, s, ans)
	if errors.Is(err, quiz.ErrEmptyAnswer) {
		b.send(s.ChatID, "⚠️ Please choose or type an answer first.", nil)
		return nil
	}
	if err != nil {
		return err
	}
	markup := createKeyboard([][]MenuButton{{
		{Text: "⬅️ Prev", CallbackData: cbPracticePrev},
		{Text: "Next ➡️", CallbackData: cbPracticeNext},
	}})
	b.send(s.ChatID, renderFeedback(fb), &markup)
	return nil
}

func (b *Bot) handlePurge(ctx context.Context, s *session.Session, confirm bool, messageID int) error {
	if !confirm {
		s.CancelPurge()
		b.reply(s.ChatID, messageID, "Nothing was deleted.", nil)
		return nil
	}
	if !s.ConfirmPurge() {
		b.reply(s.ChatID, messageID, "Use /clear to delete your data.", nil)
		return nil
	}
	if err := b.deps.Wrong.PurgeUser(ctx, s.User); err != nil {
		return err
	}
	s.ResetPractice()
	b.reply(s.ChatID, messageID, fmt.Sprintf("All answer history and wrong questions of %q were deleted.", s.User), nil)
	return nil
}
