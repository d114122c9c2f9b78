package models

// QuestionStats tallies a user's submissions for one question
type QuestionStats struct {
	Correct int `json:"correct" db:"correct_cnt"`
	Wrong   int `json:"wrong" db:"wrong_cnt"`
}

// ChapterSummary is a user's progress through one chapter
type ChapterSummary struct {
	Chapter   string `json:"chapter" db:"chapter"`
	Total     int    `json:"total" db:"total"`
	Done      int    `json:"done" db:"done_cnt"`
	Wrong     int    `json:"wrong" db:"wrong_cnt"`
	Remaining int    `json:"remaining"`
}
