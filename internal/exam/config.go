package exam

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/drillbot/pkg/models"
)

// Rule is the quota and per-question score for one question type
type Rule struct {
	Count  int
	Points int
}

// Config describes how papers are built and scored
type Config struct {
	Rules    map[models.QuestionType]Rule
	Duration time.Duration
}

// DefaultConfig returns the standard mock exam: 100 questions, 130 points, one hour
func DefaultConfig() Config {
	return Config{
		Rules: map[models.QuestionType]Rule{
			models.SingleChoice: {Count: 30, Points: 1},
			models.MultiChoice:  {Count: 20, Points: 2},
			models.TrueFalse:    {Count: 20, Points: 1},
			models.FillBlank:    {Count: 10, Points: 2},
		},
		Duration: 60 * time.Minute,
	}
}

// PointsFor returns the score of one correct answer of the type
func (c Config) PointsFor(t models.QuestionType) int {
	return c.Rules[t].Points
}

// Describe renders the rules shown before an exam starts
func Describe(cfg Config) string {
	var b strings.Builder
	questions, points, n := 0, 0, 0
	b.WriteString("Mock exam rules\n")
	for _, t := range models.TypeOrder {
		r := cfg.Rules[t]
		if r.Count == 0 {
			continue
		}
		n++
		questions += r.Count
		points += r.Count * r.Points
		fmt.Fprintf(&b, "%d. %s: %d questions, %d point(s) each\n", n, t.Label(), r.Count, r.Points)
	}
	fmt.Fprintf(&b, "Total: %d questions, %d points\n", questions, points)
	fmt.Fprintf(&b, "Time limit: %s. The paper is submitted automatically when time runs out.\n", FormatClock(cfg.Duration))
	b.WriteString("Questions appear in the order above. A short bank gives a shorter paper.")
	return b.String()
}

// FormatClock renders a duration as MM:SS, or HH:MM:SS from one hour up.
// Negative durations render as zero.
func FormatClock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
