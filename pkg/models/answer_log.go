package models

import "time"

// AnswerLogEntry records one submission. Rows are append-only.
type AnswerLogEntry struct {
	ID         int64     `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	QuestionID int64     `json:"question_id" db:"question_id"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
	AnswerText string    `json:"answer_text" db:"answer_text"`
	AnsweredAt time.Time `json:"ts" db:"ts"`
}
