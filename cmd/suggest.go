package cmd

import (
	"sort"
	"strings"
)

// levenshtein returns the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// suggestSimilar returns up to max candidates close to target, closest
// first. Candidates containing target rank as distance one.
func suggestSimilar(target string, candidates []string, max int) []string {
	type scored struct {
		name string
		dist int
	}

	target = strings.ToLower(target)
	threshold := len(target)/3 + 1

	var matches []scored
	for _, c := range candidates {
		lower := strings.ToLower(c)
		if lower == target {
			continue
		}
		d := levenshtein(target, lower)
		if strings.Contains(lower, target) || strings.Contains(target, lower) {
			d = 1
		}
		if d <= threshold {
			matches = append(matches, scored{c, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	var out []string
	for i := 0; i < len(matches) && i < max; i++ {
		out = append(out, matches[i].name)
	}
	return out
}
