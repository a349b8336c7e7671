package tags

import (
	"strings"

	"github.com/proflow/proflow-back/internal/domain"
)

// Detect returns the smart tags matched by the given task text, in table
// order. Two rules matching the same text yield two tags; nothing is
// deduplicated. Empty input yields an empty slice.
func Detect(text string) []domain.Tag {
	matched := make([]domain.Tag, 0)
	if text == "" {
		return matched
	}

	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, domain.Tag{Label: rule.Label, Color: rule.Color})
				break
			}
		}
	}
	return matched
}
