package quiz

import (
	"sort"
	"strings"

	"github.com/example/drillbot/pkg/models"
)

// Canonical true/false tokens
const (
	TrueToken  = "对"
	FalseToken = "错"
)

var trueFalseSynonyms = map[string]string{
	"对": TrueToken, "√": TrueToken, "是": TrueToken, "正确": TrueToken,
	"T": TrueToken, "True": TrueToken, "true": TrueToken,
	"yes": TrueToken, "Yes": TrueToken, "correct": TrueToken,

	"错": FalseToken, "×": FalseToken, "否": FalseToken, "错误": FalseToken,
	"F": FalseToken, "False": FalseToken, "false": FalseToken,
	"no": FalseToken, "No": FalseToken, "incorrect": FalseToken,
}

// NormalizeTrueFalse maps known synonyms to TrueToken or FalseToken.
// Unknown tokens come back trimmed but otherwise unchanged.
func NormalizeTrueFalse(s string) string {
	s = strings.TrimSpace(s)
	if v, ok := trueFalseSynonyms[s]; ok {
		return v
	}
	return s
}

// Check reports whether submitted matches the canonical answer for the question type
func Check(t models.QuestionType, submitted Answer, canonical string) bool {
	canonical = strings.TrimSpace(canonical)

	switch t {
	case models.TrueFalse:
		if submitted == nil {
			return false
		}
		return NormalizeTrueFalse(submitted.String()) == NormalizeTrueFalse(canonical)

	case models.MultiChoice:
		selected, ok := submitted.(MultiChoice)
		if !ok || len(selected) == 0 {
			return false
		}
		letters := make([]string, len(selected))
		for i, l := range selected {
			letters[i] = strings.ToUpper(strings.TrimSpace(l))
		}
		return sortedJoin(letters) == sortedJoin(strings.Split(strings.ToUpper(canonical), ""))

	case models.SingleChoice:
		if submitted == nil {
			return false
		}
		choice := strings.TrimSpace(submitted.String())
		if choice == "" {
			return false
		}
		return strings.EqualFold(choice, canonical)
	}

	// fill in the blank: exact after trimming
	if submitted == nil {
		return false
	}
	return strings.TrimSpace(submitted.String()) == canonical
}

func sortedJoin(parts []string) string {
	sort.Strings(parts)
	return strings.Join(parts, "")
}
