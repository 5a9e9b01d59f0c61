package matching

import (
	"strings"
	"unicode"
)

const containmentSimilarity = 0.8

// TitleSimilarity compares two skill labels and returns a score in [0, 1].
//
// Identical labels score 1, a label contained in the other scores a flat 0.8,
// anything else scores the Jaccard index of the word sets.
//
// Normalization lowercases and keeps only Unicode letters, digits and spaces;
// accents are not folded. A label that normalizes to the empty string scores 0
// against anything, including another empty label, even though the plain
// equality and containment rules would give 1 or 0.8.
func TitleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}

	if na == nb {
		return 1
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return containmentSimilarity
	}

	return Jaccard(tokenSet(na), tokenSet(nb))
}

func normalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard is the size of the intersection over the size of the union. Two
// empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	inter := 0
	for token := range a {
		if _, ok := b[token]; ok {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
