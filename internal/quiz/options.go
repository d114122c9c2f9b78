package quiz

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/drillbot/pkg/models"
)

// OptionLetter extracts the answer letter from an option such as "A. Paris" or "甲. 北京".
// Options that don't start with a letter are returned trimmed.
func OptionLetter(option string) string {
	option = strings.TrimSpace(option)
	r, size := utf8.DecodeRuneInString(option)
	if size > 0 && unicode.IsLetter(r) {
		return strings.ToUpper(option[:size])
	}
	return option
}

// SplitOptions splits a stored option list. Non-choice questions have none.
func SplitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, models.OptionDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
