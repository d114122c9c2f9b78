package exam

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/pkg/models"
)

// ErrAttemptFinished is returned when answering or grading a finished attempt
var ErrAttemptFinished = errors.New("exam attempt already finished")

// State is the lifecycle position of an attempt
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Attempt is one exam paper being answered. It moves NotStarted -> InProgress -> Finished
// and never back; a new exam needs a new Attempt.
type Attempt struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	mu      sync.Mutex
	state   State
	paper   []models.Question
	answers map[int]quiz.Answer
	marked  map[int]bool
	result  *Result
}

func newAttempt(id string, paper []models.Question, startedAt time.Time, d time.Duration) *Attempt {
	return &Attempt{
		ID:        id,
		StartedAt: startedAt,
		Duration:  d,
		state:     InProgress,
		paper:     paper,
		answers:   make(map[int]quiz.Answer),
		marked:    make(map[int]bool),
	}
}

// State returns the current lifecycle state
func (a *Attempt) State() State {
	if a == nil {
		return NotStarted
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Paper returns the questions in paper order
func (a *Attempt) Paper() []models.Question {
	return a.paper
}

// Len is the number of questions on the paper
func (a *Attempt) Len() int {
	return len(a.paper)
}

// SetAnswer stores or replaces the answer to question i. It panics when i is
// outside the paper, like a slice index would.
func (a *Attempt) SetAnswer(i int, ans quiz.Answer) error {
	if i < 0 || i >= len(a.paper) {
		panic(fmt.Sprintf("exam: answer index %d out of range [0,%d)", i, len(a.paper)))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Finished {
		return ErrAttemptFinished
	}
	a.answers[i] = ans
	return nil
}

// Answer returns the stored answer to question i, or nil
func (a *Attempt) Answer(i int) quiz.Answer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answers[i]
}

// Answered counts questions with a stored answer
func (a *Attempt) Answered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.answers)
}

// ToggleMark flips the review mark on question i and returns the new value
func (a *Attempt) ToggleMark(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.marked[i] = !a.marked[i]
	return a.marked[i]
}

// Marked reports whether question i is marked for review
func (a *Attempt) Marked(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.marked[i]
}

func (a *Attempt) Elapsed(now time.Time) time.Duration {
	return now.Sub(a.StartedAt)
}

// Remaining is never negative
func (a *Attempt) Remaining(now time.Time) time.Duration {
	left := a.Duration - a.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

func (a *Attempt) Expired(now time.Time) bool {
	return a.Elapsed(now) >= a.Duration
}

// Result returns the grading result, or nil before grading
func (a *Attempt) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// finish flips the attempt to Finished and snapshots the answers.
// Only the first caller gets ok == true.
func (a *Attempt) finish() (map[int]quiz.Answer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Finished {
		return nil, false
	}
	a.state = Finished
	snapshot := make(map[int]quiz.Answer, len(a.answers))
	for i, ans := range a.answers {
		snapshot[i] = ans
	}
	return snapshot, true
}

// reopen undoes finish when grading could not be stored
func (a *Attempt) reopen() {
	a.mu.Lock()
	if a.result == nil {
		a.state = InProgress
	}
	a.mu.Unlock()
}

func (a *Attempt) setResult(r *Result) {
	a.mu.Lock()
	a.result = r
	a.mu.Unlock()
}
