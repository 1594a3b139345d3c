package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 100, Ratio("softwareentwickler", "softwareentwickler"))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 100, Ratio("", ""))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0, Ratio("", "berlin"))
	})

	t.Run("completely different", func(t *testing.T) {
		assert.Less(t, Ratio("abc", "xyz"), 30)
	})

	t.Run("minor typo stays high", func(t *testing.T) {
		assert.GreaterOrEqual(t, Ratio("bibliothekar", "bibliotekar"), 90)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, Ratio("münchen", "muenchen"), Ratio("muenchen", "münchen"))
	})

	t.Run("umlauts count as single runes", func(t *testing.T) {
		// one substitution over combined length 14
		assert.GreaterOrEqual(t, Ratio("münchen", "manchen"), 85)
	})

	t.Run("scored over the combined length", func(t *testing.T) {
		// one deletion: 100*(12+11-1)/(12+11) rounds to 96
		assert.Equal(t, 96, Ratio("bibliothekar", "bibliotekar"))
		// substitutions count double, so all-different strings score zero
		assert.Equal(t, 0, Ratio("abc", "xyz"))
	})
}

func TestTokenSortRatio(t *testing.T) {
	t.Run("word order ignored", func(t *testing.T) {
		assert.Equal(t, 100, TokenSortRatio("Universität Leipzig", "Leipzig Universität"))
	})

	t.Run("case and punctuation ignored", func(t *testing.T) {
		assert.Equal(t, 100, TokenSortRatio("Meyer & Sohn", "meyer sohn"))
	})

	t.Run("different tokens score lower", func(t *testing.T) {
		assert.Less(t, TokenSortRatio("stadt bibliothek", "stadt theater"), 85)
	})
}

func TestTokenSetRatio(t *testing.T) {
	t.Run("subset scores full", func(t *testing.T) {
		score := TokenSetRatio(
			"Bibliothekar gesucht",
			"Bibliothekar gesucht für die Stadtbibliothek",
		)
		assert.Equal(t, 100, score)
	})

	t.Run("duplicate tokens collapse", func(t *testing.T) {
		assert.Equal(t, 100, TokenSetRatio("berlin berlin mitte", "mitte berlin"))
	})

	t.Run("dotted abbreviation matches plain form", func(t *testing.T) {
		assert.Equal(t, 100, TokenSetRatio("ABC GmbH", "A.B.C. GmbH"))
	})

	t.Run("disjoint token sets score low", func(t *testing.T) {
		assert.Less(t, TokenSetRatio("koch gesucht", "pilot verfügbar"), 50)
	})

	t.Run("at least token sort ratio", func(t *testing.T) {
		a := "Softwareentwickler Backend Berlin"
		b := "Berlin Softwareentwickler"
		assert.GreaterOrEqual(t, TokenSetRatio(a, b), TokenSortRatio(a, b))
	})
}

func TestLevenshteinDistance(t *testing.T) {
	t.Run("zero for equal", func(t *testing.T) {
		assert.Equal(t, 0, LevenshteinDistance("kitten", "kitten"))
	})

	t.Run("classic example", func(t *testing.T) {
		assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	})

	t.Run("empty against full", func(t *testing.T) {
		assert.Equal(t, 6, LevenshteinDistance("", "berlin"))
	})
}
