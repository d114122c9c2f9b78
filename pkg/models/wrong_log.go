package models

import "time"

// WrongLogEntry is the ledger row for a question a user last answered incorrectly
type WrongLogEntry struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	QuestionID  int64     `json:"question_id" db:"question_id"`
	WrongCount  int       `json:"wrong_count" db:"wrong_count"`
	LastWrongAt time.Time `json:"last_wrong_ts" db:"last_wrong_ts"`
}

// WrongQuestion joins a ledger row with its question for the wrong summary
type WrongQuestion struct {
	Question
	WrongCount  int       `json:"wrong_count" db:"wrong_count"`
	LastWrongAt time.Time `json:"last_wrong_ts" db:"last_wrong_ts"`
}
