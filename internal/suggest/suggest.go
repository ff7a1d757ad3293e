// Package suggest finds the closest known name for an unknown one.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxEdits bounds the Levenshtein fallback so unrelated names are not offered.
const maxEdits = 2

// Closest returns the candidate that best matches target, or "" when nothing
// is close. Candidates containing target as a case-insensitive subsequence
// win first; otherwise the nearest name within a small edit distance is used.
func Closest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxEdits+1
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Hint formats a "did you mean" line, or "" when there is no suggestion.
func Hint(target string, candidates []string) string {
	if s := Closest(target, candidates); s != "" && s != target {
		return "did you mean " + s + "?"
	}
	return ""
}
