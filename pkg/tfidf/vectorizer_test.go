package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizer_FitTransform(t *testing.T) {
	t.Run("similar documents score high", func(t *testing.T) {
		v := NewVectorizer()
		vectors, err := v.FitTransform([]string{
			"Bibliothekar für die Stadtbibliothek gesucht",
			"Bibliothekar für die Stadtbibliothek in Leipzig gesucht",
			"Pilot für Langstreckenflüge",
		})
		require.NoError(t, err)
		require.Len(t, vectors, 3)

		simClose := CosineSimilarity(vectors[0], vectors[1])
		simFar := CosineSimilarity(vectors[0], vectors[2])
		assert.Greater(t, simClose, simFar)
		assert.Greater(t, simClose, 0.5)
	})

	t.Run("vectors are unit length", func(t *testing.T) {
		v := NewVectorizer()
		vectors, err := v.FitTransform([]string{"alpha beta gamma", "beta gamma delta"})
		require.NoError(t, err)

		for _, vec := range vectors {
			assert.InDelta(t, 1.0, CosineSimilarity(vec, vec), 1e-9)
		}
	})

	t.Run("empty vocabulary", func(t *testing.T) {
		v := NewVectorizer()
		_, err := v.FitTransform([]string{"", "  ", "!!"})
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("bigrams separate reordered text", func(t *testing.T) {
		v := NewVectorizer()
		vectors, err := v.FitTransform([]string{
			"koch sucht restaurant",
			"restaurant sucht koch",
		})
		require.NoError(t, err)
		// shared unigrams but disjoint bigrams keep similarity below 1
		assert.Less(t, CosineSimilarity(vectors[0], vectors[1]), 0.999)
		assert.Greater(t, CosineSimilarity(vectors[0], vectors[1]), 0.3)
	})
}

func TestNearestNeighbors(t *testing.T) {
	v := NewVectorizer()
	vectors, err := v.FitTransform([]string{
		"softwareentwickler backend golang",
		"softwareentwickler backend golang berlin",
		"gärtner landschaftsbau",
		"gärtner landschaftsbau hamburg",
	})
	require.NoError(t, err)

	t.Run("nearest neighbor is the near duplicate", func(t *testing.T) {
		neighbors := NearestNeighbors(vectors, 1)
		require.Len(t, neighbors, 4)
		assert.Equal(t, []int{1}, neighbors[0])
		assert.Equal(t, []int{0}, neighbors[1])
		assert.Equal(t, []int{3}, neighbors[2])
		assert.Equal(t, []int{2}, neighbors[3])
	})

	t.Run("k clamped to corpus size", func(t *testing.T) {
		neighbors := NearestNeighbors(vectors, 10)
		for i, ns := range neighbors {
			assert.Len(t, ns, 3)
			assert.NotContains(t, ns, i)
		}
	})

	t.Run("no self neighbors", func(t *testing.T) {
		neighbors := NearestNeighbors(vectors, 2)
		for i, ns := range neighbors {
			assert.NotContains(t, ns, i)
		}
	})
}
