package exam

import (
	"context"
	"errors"
	"time"

	"github.com/example/drillbot/pkg/models"
	"github.com/google/uuid"
)

// ErrEmptyPaper is returned when the bank has no questions for any exam type
var ErrEmptyPaper = errors.New("no questions available for an exam paper")

// questionSource draws random questions of one type
type questionSource interface {
	RandomByType(ctx context.Context, t models.QuestionType, limit int) ([]models.Question, error)
}

// Builder assembles exam papers from the question bank
type Builder struct {
	questions questionSource
	config    Config
}

// NewBuilder creates a new paper builder
func NewBuilder(questions questionSource, config Config) *Builder {
	return &Builder{questions: questions, config: config}
}

// Build draws each type's quota without replacement and concatenates the groups
// in type order. Types with a short pool contribute what they have.
func (b *Builder) Build(ctx context.Context, now time.Time) (*Attempt, error) {
	var paper []models.Question
	for _, t := range models.TypeOrder {
		rule := b.config.Rules[t]
		if rule.Count <= 0 {
			continue
		}
		group, err := b.questions.RandomByType(ctx, t, rule.Count)
		if err != nil {
			return nil, err
		}
		paper = append(paper, group...)
	}
	if len(paper) == 0 {
		return nil, ErrEmptyPaper
	}
	return newAttempt(uuid.NewString(), paper, now, b.config.Duration), nil
}
