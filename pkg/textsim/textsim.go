// Package textsim provides the text normalization and word-overlap similarity
// used to spot near-duplicate submissions.
package textsim

import (
	"strings"
	"unicode"
)

// NormalizeContent lower-cases s, drops every rune that is not a letter, digit,
// whitespace or underscore, collapses whitespace runs to a single space and trims.
func NormalizeContent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CalculateSimilarity returns the frequency-aware Jaccard index of the words in
// a and b. Inputs are expected to be normalized already.
//
// Two empty strings are identical (1.0); exactly one empty string shares nothing (0.0).
func CalculateSimilarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1.0
	}
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	freqA := wordFrequency(wordsA)
	freqB := wordFrequency(wordsB)

	var intersection, union int
	for word, countA := range freqA {
		countB := freqB[word]
		intersection += min(countA, countB)
		union += max(countA, countB)
	}
	for word, countB := range freqB {
		if _, seen := freqA[word]; !seen {
			union += countB
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func wordFrequency(words []string) map[string]int {
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}
