package matcher

import (
	"github.com/hbollon/go-edlib"
)

// nameDistance returns the smaller Damerau-Levenshtein distance between the
// keyword and either the stem or the full base name
func nameDistance(keyword, stem, base string) int {
	d := edlib.DamerauLevenshteinDistance(keyword, stem)
	if base != stem {
		if db := edlib.DamerauLevenshteinDistance(keyword, base); db < d {
			d = db
		}
	}
	return d
}

// Jaccard returns |A∩B| / |A∪B| over the character sets of a and b.
// Two empty strings have similarity 0.
func Jaccard(a, b string) float64 {
	setA := make(map[rune]struct{}, len(a))
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{}, len(b))
	for _, r := range b {
		setB[r] = struct{}{}
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
