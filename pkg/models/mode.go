package models

import (
	"fmt"
	"strings"
)

// Mode is the question selection strategy of a session
type Mode string

const (
	// ChapterDrill filters the whole bank by chapter and/or type
	ChapterDrill Mode = "chapter_drill"
	// WrongRetry restricts selection to the user's wrong ledger
	WrongRetry Mode = "wrong_retry"
	// ShuffledDrill filters by type only
	ShuffledDrill Mode = "shuffled_drill"
	// Exam runs a timed mock exam
	Exam Mode = "exam"
)

// ParseMode accepts canonical codes and short names
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chapter", "chapter_drill", "章节刷题":
		return ChapterDrill, nil
	case "wrong", "wrong_retry", "错题重刷":
		return WrongRetry, nil
	case "shuffle", "shuffled", "shuffled_drill", "随机刷题":
		return ShuffledDrill, nil
	case "exam", "模拟考核":
		return Exam, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// UsesChapter reports whether the chapter filter applies in this mode
func (m Mode) UsesChapter() bool {
	return m == ChapterDrill || m == WrongRetry
}
