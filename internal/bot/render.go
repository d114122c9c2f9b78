package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/practice"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/internal/session"
	"github.com/example/drillbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxListed caps list replies well under Telegram's message size limit
const maxListed = 30

var modeLabels = map[models.Mode]string{
	models.ChapterDrill:  "Chapter drill",
	models.WrongRetry:    "Wrong retry",
	models.ShuffledDrill: "Shuffled drill",
	models.Exam:          "Mock exam",
}

func modeLabel(m models.Mode) string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

func typeLabel(t models.QuestionType) string {
	if t == "" {
		return "all types"
	}
	return t.Label()
}

func orAll(chapter string) string {
	if chapter == "" {
		return "all chapters"
	}
	return chapter
}

func filterLine(s *session.Session) string {
	parts := []string{modeLabel(s.Mode)}
	if s.Mode.UsesChapter() {
		parts = append(parts, orAll(s.Chapter))
	}
	parts = append(parts, typeLabel(s.Type))
	return strings.Join(parts, " · ")
}

func chapterNote(s *session.Session) string {
	note := "Chapter filter: " + orAll(s.Chapter)
	if !s.Mode.UsesChapter() {
		note += " (ignored in " + modeLabel(s.Mode) + ")"
	}
	return note
}

// answerChoices returns the button values for a question: option letters, or the true/false tokens
func answerChoices(q models.Question) []string {
	if q.Type == models.TrueFalse {
		return []string{quiz.TrueToken, quiz.FalseToken}
	}
	var letters []string
	for _, opt := range quiz.SplitOptions(q.Options) {
		letters = append(letters, quiz.OptionLetter(opt))
	}
	return letters
}

// choiceAt resolves the index carried in a button's callback data back to its answer value
func choiceAt(q models.Question, idx string) (string, error) {
	choices := answerChoices(q)
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(choices) {
		return "", fmt.Errorf("invalid choice %q for question %d", idx, q.ID)
	}
	return choices[i], nil
}

func writeQuestionBody(b *strings.Builder, q models.Question) {
	fmt.Fprintf(b, "[%s] %s\n\n%s\n", q.Type.Label(), q.Chapter, q.Text)
	for _, opt := range quiz.SplitOptions(q.Options) {
		fmt.Fprintf(b, "%s\n", opt)
	}
	if q.Type == models.FillBlank {
		b.WriteString("\nType your answer as a message.")
	}
}

func renderPracticeQuestion(s *session.Session, q *models.Question, total int, elapsed time.Duration) (string, *tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · question %d of %d · ⏱ %s\n", filterLine(s), s.Index+1, total, exam.FormatClock(elapsed))
	writeQuestionBody(&b, *q)

	var rows [][]MenuButton
	switch q.Type {
	case models.SingleChoice, models.TrueFalse:
		var row []MenuButton
		for i, v := range answerChoices(*q) {
			row = append(row, MenuButton{Text: v, CallbackData: practiceData(cbAnswer, q.ID, strconv.Itoa(i))})
		}
		rows = append(rows, row)
	case models.MultiChoice:
		var row []MenuButton
		for i, v := range answerChoices(*q) {
			label := v
			if s.Pending.Has(v) {
				label = "✅ " + v
			}
			row = append(row, MenuButton{Text: label, CallbackData: practiceData(cbToggle, q.ID, strconv.Itoa(i))})
		}
		rows = append(rows, row, []MenuButton{{Text: "Submit " + s.Pending.String(), CallbackData: practiceData(cbSubmitMulti, q.ID, "")}})
	}
	rows = append(rows, []MenuButton{
		{Text: "⬅️ Prev", CallbackData: cbPracticePrev},
		{Text: "Next ➡️", CallbackData: cbPracticeNext},
	})
	markup := createKeyboard(rows)
	return b.String(), &markup
}

func renderFeedback(fb *practice.Feedback) string {
	head := "✅ Correct!"
	if !fb.Correct {
		head = "❌ Wrong. The answer is: " + fb.Canonical
	}
	return fmt.Sprintf("%s\nThis question so far: %d correct, %d wrong.", head, fb.Stats.Correct, fb.Stats.Wrong)
}

func renderExamQuestion(a *exam.Attempt, i int, now time.Time) (string, *tgbotapi.InlineKeyboardMarkup) {
	q := a.Paper()[i]
	ans := a.Answer(i)

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Exam · %d/%d · answered %d · ⏳ %s left", i+1, a.Len(), a.Answered(), exam.FormatClock(a.Remaining(now)))
	if a.Marked(i) {
		b.WriteString(" · 🚩 marked")
	}
	b.WriteString("\n")
	writeQuestionBody(&b, q)
	if ans != nil && ans.String() != "" {
		fmt.Fprintf(&b, "\nYour answer: %s", ans.String())
	}

	key := examKey(a)
	var rows [][]MenuButton
	switch q.Type {
	case models.SingleChoice, models.TrueFalse:
		var row []MenuButton
		for j, v := range answerChoices(q) {
			label := v
			if ans != nil && ans.String() == v {
				label = "• " + v
			}
			row = append(row, MenuButton{Text: label, CallbackData: examData(cbExamAnswer, key, i, strconv.Itoa(j))})
		}
		rows = append(rows, row)
	case models.MultiChoice:
		selected, _ := ans.(quiz.MultiChoice)
		var row []MenuButton
		for j, v := range answerChoices(q) {
			label := v
			if selected.Has(v) {
				label = "✅ " + v
			}
			row = append(row, MenuButton{Text: label, CallbackData: examData(cbExamToggle, key, i, strconv.Itoa(j))})
		}
		rows = append(rows, row)
	}
	markLabel := "🚩 Mark"
	if a.Marked(i) {
		markLabel = "Unmark"
	}
	rows = append(rows,
		[]MenuButton{
			{Text: "⬅️", CallbackData: examNav(key, examPrev)},
			{Text: markLabel, CallbackData: examNav(key, examMark)},
			{Text: "➡️", CallbackData: examNav(key, examNext)},
		},
		[]MenuButton{{Text: "📤 Submit paper", CallbackData: examNav(key, examSubmit)}},
	)
	markup := createKeyboard(rows)
	return b.String(), &markup
}

func renderResult(r *exam.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Score: %d / %d (%d of %d correct)\n\n", r.Total, r.Max, r.Correct, len(r.Items))

	type tally struct{ count, correct, awarded, max int }
	byType := make(map[models.QuestionType]*tally)
	var missed []string
	for _, it := range r.Items {
		t, ok := byType[it.Type]
		if !ok {
			t = &tally{}
			byType[it.Type] = t
		}
		t.count++
		t.awarded += it.Awarded
		t.max += it.Max
		if it.Passed {
			t.correct++
		} else {
			missed = append(missed, fmt.Sprint(it.Index+1))
		}
	}
	for _, qt := range models.TypeOrder {
		if t, ok := byType[qt]; ok {
			fmt.Fprintf(&b, "%s: %d/%d correct, %d/%d points\n", qt.Label(), t.correct, t.count, t.awarded, t.max)
		}
	}
	if len(missed) > 0 {
		if len(missed) > maxListed {
			missed = append(missed[:maxListed], "…")
		}
		fmt.Fprintf(&b, "\nMissed: %s\nMissed questions were added to your wrong list.", strings.Join(missed, ", "))
	}
	return b.String()
}

func renderWrongList(user string, list []models.WrongQuestion) string {
	if len(list) == 0 {
		return fmt.Sprintf("%s has no wrong questions. 🎉", user)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Wrong questions of %s (%d):\n", user, len(list))
	for i, w := range list {
		if i == maxListed {
			fmt.Fprintf(&b, "\n…and %d more. Use /mode wrong to practice them.", len(list)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n%d. [%s · %s] ×%d\n%s\nAnswer: %s\n", i+1, w.Chapter, w.Type.Label(), w.WrongCount, w.Text, w.Answer)
	}
	return b.String()
}

func renderChapterSummary(user string, rows []models.ChapterSummary) string {
	if len(rows) == 0 {
		return "The question bank is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Progress of %s:\n", user)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s: %d questions, %d done, %d wrong, %d left", r.Chapter, r.Total, r.Done, r.Wrong, r.Remaining)
	}
	return b.String()
}
