package quiz

import (
	"errors"
	"strings"

	"github.com/example/drillbot/pkg/models"
)

// ErrEmptyAnswer rejects a submission with nothing selected or typed
var ErrEmptyAnswer = errors.New("answer is empty")

// Answer is a submitted answer. The concrete type follows the question type:
// Choice for single choice and true/false, MultiChoice for multiple choice,
// Text for fill in the blank.
type Answer interface {
	// String is the raw answer text kept in the answer log
	String() string
	isAnswer()
}

// Choice is one selected option letter or true/false token
type Choice string

// MultiChoice is the set of selected option letters
type MultiChoice []string

// Text is a typed answer
type Text string

func (c Choice) String() string { return string(c) }
func (Choice) isAnswer()        {}

func (m MultiChoice) String() string { return strings.Join(m, "") }
func (MultiChoice) isAnswer()        {}

func (t Text) String() string { return string(t) }
func (Text) isAnswer()        {}

// Toggle adds the letter if absent and removes it otherwise
func (m MultiChoice) Toggle(letter string) MultiChoice {
	for i, l := range m {
		if strings.EqualFold(l, letter) {
			return append(m[:i:i], m[i+1:]...)
		}
	}
	return append(m[:len(m):len(m)], letter)
}

// Has reports whether the letter is selected
func (m MultiChoice) Has(letter string) bool {
	for _, l := range m {
		if strings.EqualFold(l, letter) {
			return true
		}
	}
	return false
}

// Validate rejects empty answers before they are checked or logged
func Validate(t models.QuestionType, a Answer) error {
	if a == nil {
		return ErrEmptyAnswer
	}
	switch v := a.(type) {
	case MultiChoice:
		if len(v) == 0 {
			return ErrEmptyAnswer
		}
	default:
		if strings.TrimSpace(a.String()) == "" {
			return ErrEmptyAnswer
		}
	}
	return nil
}
