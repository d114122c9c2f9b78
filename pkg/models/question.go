package models

import (
	"fmt"
	"strings"
)

// QuestionType identifies how a question is answered and graded
type QuestionType string

const (
	// SingleChoice expects exactly one option letter
	SingleChoice QuestionType = "single_choice"
	// MultiChoice expects a set of option letters
	MultiChoice QuestionType = "multi_choice"
	// TrueFalse expects a true/false token
	TrueFalse QuestionType = "true_false"
	// FillBlank expects free text
	FillBlank QuestionType = "fill_blank"
)

// TypeOrder is the order question types appear in an exam paper
var TypeOrder = []QuestionType{SingleChoice, MultiChoice, TrueFalse, FillBlank}

// OptionDelimiter separates option strings in questions.options
const OptionDelimiter = "||"

var typeAliases = map[string]QuestionType{
	"single_choice": SingleChoice,
	"single":        SingleChoice,
	"单选题":           SingleChoice,
	"multi_choice":  MultiChoice,
	"multi":         MultiChoice,
	"多选题":           MultiChoice,
	"true_false":    TrueFalse,
	"tf":            TrueFalse,
	"判断题":           TrueFalse,
	"fill_blank":    FillBlank,
	"blank":         FillBlank,
	"填空题":           FillBlank,
}

var typeLabels = map[QuestionType]string{
	SingleChoice: "Single choice",
	MultiChoice:  "Multiple choice",
	TrueFalse:    "True/False",
	FillBlank:    "Fill in the blank",
}

// ParseQuestionType accepts canonical codes, short names and the bank's Chinese labels
func ParseQuestionType(s string) (QuestionType, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Label returns a human readable name
func (t QuestionType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsChoice reports whether the question carries an option list
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

// Question is a row of the question bank. Rows are read-only after import.
type Question struct {
	ID      int64        `json:"id" db:"id"`
	Chapter string       `json:"chapter" db:"chapter"`
	Type    QuestionType `json:"q_type" db:"q_type"`
	Text    string       `json:"text" db:"text"`
	Options string       `json:"options" db:"options"` // delimiter-joined, empty for non-choice types
	Answer  string       `json:"answer" db:"answer"`
}

// OptionList splits Options on the delimiter
func (q Question) OptionList() []string {
	if q.Options == "" {
		return nil
	}
	return strings.Split(q.Options, OptionDelimiter)
}
