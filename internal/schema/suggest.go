package schema

import (
	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// maxSuggestDistance bounds how far a header may be from a synonym before we
// stop suggesting it.
const maxSuggestDistance = 3

// UnmappedHeader is a header that resolved to no canonical field, paired with
// the closest known synonym when one looks like a plausible misspelling.
type UnmappedHeader struct {
	Header     string `json:"header"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Unmapped lists the headers Detect could not place. Suggestions are for
// operators fixing their files; they never influence detection itself.
func Unmapped(headers []string, m Mapping) []UnmappedHeader {
	used := make(map[string]struct{})
	for _, fm := range m {
		if fm.Source != "" {
			used[fm.Source] = struct{}{}
		}
	}

	var out []UnmappedHeader
	for _, h := range headers {
		if _, ok := used[h]; ok {
			continue
		}
		out = append(out, UnmappedHeader{Header: h, Suggestion: suggestSynonym(h)})
	}
	return out
}

// suggestSynonym returns the known synonym nearest to the header, or "" when
// nothing is within maxSuggestDistance edits of it.
func suggestSynonym(header string) string {
	norm := NormalizeHeader(header)
	if norm == "" {
		return ""
	}

	best := ""
	bestScore := 0.0
	for _, f := range Fields() {
		for _, syn := range headerSynonyms[f] {
			normSyn := NormalizeHeader(syn)
			if levenshtein.ComputeDistance(norm, normSyn) > maxSuggestDistance {
				continue
			}
			if score := smetrics.JaroWinkler(norm, normSyn, 0.7, 4); score > bestScore {
				bestScore = score
				best = syn
			}
		}
	}
	return best
}
