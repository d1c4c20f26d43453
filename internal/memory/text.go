package memory

import "strings"

// NormalizeText lowercases and collapses runs of whitespace. This is the
// canonical form texts take before similarity comparison.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SimilarityRatio computes sequence-level character similarity in [0,1]:
// twice the total matched run length over the combined length. Two empty
// strings count as identical.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	return 2 * float64(matchTotal(ra, rb)) / float64(len(ra)+len(rb))
}

// matchTotal sums matching-block lengths by recursing on both sides of the
// longest common substring.
func matchTotal(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchTotal(a[:ai], b[:bi]) + matchTotal(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest common substring of a and b, preferring
// the earliest position on ties. Returns start indexes and length.
func longestMatch(a, b []rune) (int, int, int) {
	var bestA, bestB, bestSize int
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			cur[j+1] = prev[j] + 1
			if cur[j+1] > bestSize {
				bestSize = cur[j+1]
				bestA = i - bestSize + 1
				bestB = j - bestSize + 1
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return bestA, bestB, bestSize
}
