// Package similarity provides the string comparison scores used by the
// duplicate detection engine. All scores are on a 0-100 scale.
package similarity

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Ratio returns a Levenshtein-based similarity between two strings on the
// python-Levenshtein scale: 100*(lenA+lenB-dist)/(lenA+lenB), with
// substitutions costing two edits. The matching rule thresholds (85/90/95)
// were tuned against this formula. 100 means identical, 0 means nothing in
// common.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	lenSum := len(ra) + len(rb)
	if lenSum == 0 {
		return 100
	}
	distance := indelDistance(ra, rb)
	return int(float64(100*(lenSum-distance))/float64(lenSum) + 0.5)
}

// TokenSortRatio tokenizes both strings, sorts the tokens, and scores the
// rejoined strings. Word order does not affect the result.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokenString(a), sortedTokenString(b))
}

// TokenSetRatio compares the strings by their token sets: the shared tokens,
// and the shared tokens extended by each side's remainder. The best of the
// three pairwise scores wins, so a string that is a token subset of the other
// scores 100. This mirrors the token_set_ratio the original matching rules
// were tuned against.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if base != "" {
		if s := Ratio(base, combinedA); s > best {
			best = s
		}
		if s := Ratio(base, combinedB); s > best {
			best = s
		}
	}
	return best
}

// LevenshteinDistance calculates the edit distance between two strings
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	prevRow := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(rb)]
}

// indelDistance is the edit distance with substitutions weighted as a
// deletion plus an insertion, the weighting Ratio is defined over.
func indelDistance(ra, rb []rune) int {
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	prevRow := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 2
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(rb)]
}

func sortedTokenString(s string) string {
	tokens := strings.Fields(normalizers.NormalizeText(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalizers.NormalizeText(s)) {
		set[tok] = true
	}
	return set
}
