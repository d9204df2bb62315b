package search

import (
	"strings"
)

// BuildKeywordQuery quotes every skill and joins them with OR. When the degree
// mentions computer science the tech terms are appended the same way.
func BuildKeywordQuery(skills []string, education string, techTerms []string) string {
	parts := make([]string, 0, len(skills)+len(techTerms))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			parts = append(parts, quote(skill))
		}
	}

	if strings.Contains(strings.ToLower(education), "computer science") {
		for _, term := range techTerms {
			if term = strings.TrimSpace(term); term != "" {
				parts = append(parts, quote(term))
			}
		}
	}

	return strings.Join(parts, " OR ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}
