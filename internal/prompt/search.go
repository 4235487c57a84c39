package prompt

import (
	"sort"
	"strings"
	"time"
)

// SearchRequest describes one search over a prompt snapshot. All
// fields are optional; zero values mean "no filter".
type SearchRequest struct {
	Query    string   `json:"query,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Author   string   `json:"author,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Search filters, scores and ranks a prompt snapshot. The candidate
// slice and usage log are owned by the caller and are not mutated;
// repeated calls with identical inputs return identical orderings.
func Search(candidates []Prompt, log UsageLog, req SearchRequest, now time.Time) []Prompt {
	results := make([]Prompt, 0, len(candidates))
	for _, p := range candidates {
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		if len(req.Tags) > 0 && !sharesTag(p.Tags, req.Tags) {
			continue
		}
		if req.Author != "" && !strings.Contains(strings.ToLower(p.Author), strings.ToLower(req.Author)) {
			continue
		}
		results = append(results, p)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	if query != "" {
		matched := results[:0]
		for _, p := range results {
			if matchesQuery(p, query) {
				matched = append(matched, p)
			}
		}
		results = matched

		composite := make(map[string]float64, len(results))
		for _, p := range results {
			composite[p.ID] = float64(FuzzyScore(p, query)) + UsageScore(p.ID, log, now)
		}
		sort.SliceStable(results, func(i, j int) bool {
			si, sj := composite[results[i].ID], composite[results[j].ID]
			if si != sj {
				return si > sj
			}
			return results[i].UpdatedAt.After(results[j].UpdatedAt)
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].UpdatedAt.After(results[j].UpdatedAt)
		})
	}

	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results
}

// sharesTag reports whether the prompt carries at least one of the
// requested tags (case-sensitive exact match).
func sharesTag(promptTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range promptTags {
			if t == w {
				return true
			}
		}
	}
	return false
}

// matchesQuery is the cheap substring prefilter applied before the
// scorers run.
func matchesQuery(p Prompt, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Content), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
