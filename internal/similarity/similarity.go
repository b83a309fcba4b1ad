// Package similarity implements the fuzzy string comparisons used by the
// matching engine. Scores are on a 0-100 scale where 100 is an exact match.
package similarity

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// Ratio returns the normalized indel similarity between a and b.
//
// It is derived from the edit distance where insertions and deletions cost 1
// and substitutions cost 2, scaled against the combined length of both
// strings. Two empty strings are identical and score 100.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSortRatio tokenizes both strings, sorts the tokens, and compares the
// rejoined results with Ratio. Word order does not affect the score. A string
// with no tokens scores 0 against anything.
func TokenSortRatio(a, b string) float64 {
	ta := sortedTokens(a)
	tb := sortedTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	return Ratio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenSetRatio compares the unique tokens of both strings, scoring the
// shared tokens against each side's full token set and taking the best
// result. A string that is a token subset of the other scores 100. A string
// with no tokens scores 0 against anything.
func TokenSetRatio(a, b string) float64 {
	ta := uniqueTokens(a)
	tb := uniqueTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared, onlyA, onlyB := partitionTokens(ta, tb)

	base := strings.Join(shared, " ")
	joinedA := joinNonEmpty(base, strings.Join(onlyA, " "))
	joinedB := joinNonEmpty(base, strings.Join(onlyB, " "))

	score := Ratio(base, joinedA)
	if s := Ratio(base, joinedB); s > score {
		score = s
	}
	if s := Ratio(joinedA, joinedB); s > score {
		score = s
	}
	return score
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

// uniqueTokens returns the distinct whitespace-separated tokens of s in
// sorted order.
func uniqueTokens(s string) []string {
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		seen[tok] = struct{}{}
	}
	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// partitionTokens splits two sorted unique token lists into the tokens they
// share and the tokens each side holds alone. All three results stay sorted.
func partitionTokens(ta, tb []string) (shared, onlyA, onlyB []string) {
	inB := make(map[string]struct{}, len(tb))
	for _, tok := range tb {
		inB[tok] = struct{}{}
	}
	inA := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		inA[tok] = struct{}{}
	}
	for _, tok := range ta {
		if _, ok := inB[tok]; ok {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for _, tok := range tb {
		if _, ok := inA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	return shared, onlyA, onlyB
}

// joinNonEmpty joins the non-empty parts with a single space.
func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
