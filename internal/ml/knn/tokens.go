package knn

import (
	"strings"
	"unicode"
)

// minTokenLength drops short stop-word-ish tokens from text overlap
const minTokenLength = 3

// tokenize lowercases text, splits on non-word boundaries and discards
// tokens shorter than minTokenLength
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens[f] = struct{}{}
		}
	}
	return tokens
}

// jaccard is |A∩B| / |A∪B|; empty-on-both-sides yields zero
func jaccard[K comparable](a, b map[K]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
