// Package match implements substring and typo-tolerant term matching.
package match

import "strings"

// MinFuzzyLength is the shortest term (in runes) eligible for fuzzy matching.
// Shorter terms only match as exact substrings.
const MinFuzzyLength = 4

// Policy holds the matching configuration for one search.
type Policy struct {
	CaseSensitive bool
	Fuzzy         bool
	// TypoTolerance is the number of term runes per allowed edit. Values below 1 are treated as 1.
	TypoTolerance int
}

// Matches reports whether value contains term under the policy.
func (p Policy) Matches(term, value string) bool {
	if !p.CaseSensitive {
		term = strings.ToLower(term)
		value = strings.ToLower(value)
	}
	if !p.Fuzzy {
		return strings.Contains(value, term)
	}
	if strings.Contains(value, term) {
		return true
	}

	t := []rune(term)
	v := []rune(value)
	if len(t) < MinFuzzyLength {
		return false
	}
	maxTypos := len(t) / max(p.TypoTolerance, 1)

	if len(t) > len(v) {
		return distance(t, v) <= maxTypos
	}
	for i := 0; i+len(t) <= len(v); i++ {
		if distance(t, v[i:i+len(t)]) <= maxTypos {
			return true
		}
	}
	if len(v) <= len(t)+maxTypos {
		return distance(t, v) <= maxTypos
	}
	return false
}

// Matches is a convenience wrapper around Policy.Matches.
func Matches(term, value string, caseSensitive, fuzzy bool, typoTolerance int) bool {
	return Policy{CaseSensitive: caseSensitive, Fuzzy: fuzzy, TypoTolerance: typoTolerance}.Matches(term, value)
}

// Distance returns the Levenshtein edit distance between a and b, measured in runes.
func Distance(a, b string) int {
	return distance([]rune(a), []rune(b))
}

func distance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
