package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/example/drillbot/internal/database"
	"github.com/example/drillbot/internal/exam"
	"github.com/example/drillbot/internal/quiz"
	"github.com/example/drillbot/pkg/models"
)

var (
	// ErrExamInProgress is returned when starting an exam over a running one
	ErrExamInProgress = errors.New("an exam is already in progress")
	// ErrEmptyUser rejects a blank user label
	ErrEmptyUser = errors.New("user label cannot be empty")
)

// Session is the state of one chat. Callers hold its lock while handling an update.
type Session struct {
	sync.Mutex

	ChatID  int64
	User    string
	Mode    models.Mode
	Chapter string
	Type    models.QuestionType

	// History holds the practice question ids in the order they were shown.
	// Index points into it, -1 before the first question.
	History       []int64
	Index         int
	PracticeStart time.Time
	// Pending is the multi-choice selection being built for the current question
	Pending quiz.MultiChoice

	Exam *exam.Attempt
	// ExamView is the paper position currently shown
	ExamView int

	confirmPurge bool
	LastSeen     time.Time
}

// New creates a session in chapter drill over the whole bank
func New(chatID int64, user string, now time.Time) *Session {
	return &Session{
		ChatID:   chatID,
		User:     user,
		Mode:     models.ChapterDrill,
		Index:    -1,
		LastSeen: now,
	}
}

// ResetPractice forgets the practice position and timer
func (s *Session) ResetPractice() {
	s.History = nil
	s.Index = -1
	s.Pending = nil
	s.PracticeStart = time.Time{}
}

func (s *Session) SetMode(m models.Mode) {
	if s.Mode != m {
		s.Mode = m
		s.ResetPractice()
	}
}

// SetChapter sets the chapter filter. Empty means all chapters.
func (s *Session) SetChapter(chapter string) {
	if s.Chapter != chapter {
		s.Chapter = chapter
		s.ResetPractice()
	}
}

// SetType sets the type filter. Empty means all types.
func (s *Session) SetType(t models.QuestionType) {
	if s.Type != t {
		s.Type = t
		s.ResetPractice()
	}
}

// SetUser switches the user label the ledgers are keyed by
func (s *Session) SetUser(user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return ErrEmptyUser
	}
	if s.User != user {
		s.User = user
		s.ResetPractice()
		s.confirmPurge = false
	}
	return nil
}

// Filter is the selection filter for the session's mode and filters
func (s *Session) Filter() database.QuestionFilter {
	return database.QuestionFilter{
		User:    s.User,
		Mode:    s.Mode,
		Chapter: s.Chapter,
		Type:    s.Type,
	}
}

// Current returns the id of the question being shown
func (s *Session) Current() (int64, bool) {
	if s.Index < 0 || s.Index >= len(s.History) {
		return 0, false
	}
	return s.History[s.Index], true
}

// Push appends a newly selected question and moves to it
func (s *Session) Push(id int64) {
	s.History = append(s.History, id)
	s.Index = len(s.History) - 1
	s.Pending = nil
}

// ExamState is NotStarted when there is no attempt
func (s *Session) ExamState() exam.State {
	return s.Exam.State()
}

// StartExam installs a new attempt, replacing a finished one
func (s *Session) StartExam(a *exam.Attempt) error {
	if s.ExamState() == exam.InProgress {
		return ErrExamInProgress
	}
	s.Exam = a
	s.ExamView = 0
	return nil
}

// ResetExam discards the attempt without grading it
func (s *Session) ResetExam() {
	s.Exam = nil
	s.ExamView = 0
}

// RequestPurge arms the clear-data confirmation
func (s *Session) RequestPurge() { s.confirmPurge = true }

func (s *Session) PurgePending() bool { return s.confirmPurge }

// ConfirmPurge consumes the confirmation. It reports false when none was requested.
func (s *Session) ConfirmPurge() bool {
	ok := s.confirmPurge
	s.confirmPurge = false
	return ok
}

func (s *Session) CancelPurge() { s.confirmPurge = false }
