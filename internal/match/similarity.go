// package match decides the catalog outcome for each performed song.
package match

import (
	"strings"
	"unicode"
)

// Similarity scores how alike two titles are, in [0, 1].
//
// Both strings are normalized (lowercased, punctuation stripped,
// whitespace collapsed) before comparison. Equal strings score 1.0 and a
// substring relationship scores 0.9; anything else falls through to a
// bigram Dice coefficient.
//
// The resolver does not consult this score; matching rides entirely on
// search ranking and the artist-scoped query. It is kept as a utility
// for callers that want to order or annotate candidates.
func Similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == b {
		return 1.0
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return 0.9
	}

	pairsA := bigrams(a)
	pairsB := bigrams(b)
	if len(pairsA)+len(pairsB) == 0 {
		return 0
	}

	shared := 0
	for pair := range pairsA {
		if _, ok := pairsB[pair]; ok {
			shared++
		}
	}
	return 2.0 * float64(shared) / float64(len(pairsA)+len(pairsB))
}

// normalize lowercases, strips everything but word characters and
// spaces, collapses runs of whitespace, and trims.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// bigrams returns the set of length-2 contiguous substrings. Strings
// shorter than 2 runes produce an empty set.
func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}
