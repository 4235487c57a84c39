package prompt

import (
	"regexp"
	"strings"
)

// FuzzyScore computes the relevance of a prompt for a lower-cased
// query. All bonuses are additive and comparisons case-insensitive.
// An empty query scores 0; the search pipeline then sorts by recency.
//
// The constants are empirically chosen and must not be revised without
// a deliberate ranking change; see UsageScore.
func FuzzyScore(p Prompt, query string) int {
	if query == "" {
		return 0
	}

	name := strings.ToLower(p.Name)
	description := strings.ToLower(p.Description)
	content := strings.ToLower(p.Content)

	score := 0

	// Exact match bonuses.
	if name == query {
		score += 100
	}
	if description == query {
		score += 80
	}
	for _, tag := range p.Tags {
		if strings.ToLower(tag) == query {
			score += 90
			break
		}
	}

	// Substring position bonuses: earlier matches score higher.
	if i := strings.Index(name, query); i >= 0 {
		score += maxInt(50-2*i, 10)
	}
	if i := strings.Index(description, query); i >= 0 {
		score += maxInt(30-i, 5)
	}
	for _, tag := range p.Tags {
		if i := strings.Index(strings.ToLower(tag), query); i >= 0 {
			score += maxInt(40-i, 8)
		}
	}
	if i := strings.Index(content, query); i >= 0 {
		score += maxInt(20-i/100, 2)
	}

	// Word-boundary bonuses for whole-word hits.
	if re, err := wordBoundaryPattern(query); err == nil {
		if re.MatchString(p.Name) {
			score += 15
		}
		if re.MatchString(p.Description) {
			score += 10
		}
	}

	// Length-similarity bonus: queries covering a good share of the
	// name are more intentional than incidental substrings.
	if len(query) >= 3 && len(name) > 0 {
		ratio := float64(len(query)) / float64(len(name))
		if ratio > 0.3 {
			score += int(ratio * 10)
		}
	}

	return score
}

func wordBoundaryPattern(query string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(query) + `\b`)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
