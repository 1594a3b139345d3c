// Package tfidf implements a term-frequency/inverse-document-frequency
// vectorizer with a brute-force cosine nearest-neighbor search. It is fitted
// per record block; vocabularies are never reused across blocks.
package tfidf

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// ErrEmptyVocabulary is returned when no document produced any term, which
// makes vectorization impossible.
var ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary")

// Vector is a sparse L2-normalized document vector keyed by term index.
type Vector map[int]float64

// Vectorizer builds unigram+bigram TF-IDF vectors over a fitted corpus.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// FitTransform fits the vocabulary and IDF weights on the corpus and returns
// one normalized vector per document.
func (v *Vectorizer) FitTransform(docs []string) ([]Vector, error) {
	tokenized := make([][]string, len(docs))
	v.vocabulary = make(map[string]int)
	documentFrequency := map[int]int{}

	for i, doc := range docs {
		terms := ngrams(tokenize(doc))
		tokenized[i] = terms

		seen := map[int]bool{}
		for _, term := range terms {
			idx, ok := v.vocabulary[term]
			if !ok {
				idx = len(v.vocabulary)
				v.vocabulary[term] = idx
			}
			if !seen[idx] {
				documentFrequency[idx]++
				seen[idx] = true
			}
		}
	}

	if len(v.vocabulary) == 0 {
		return nil, ErrEmptyVocabulary
	}

	// Smoothed IDF, as if one extra document contained every term.
	n := float64(len(docs))
	v.idf = make([]float64, len(v.vocabulary))
	for idx, df := range documentFrequency {
		v.idf[idx] = math.Log((1+n)/(1+float64(df))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, terms := range tokenized {
		vectors[i] = v.vectorize(terms)
	}
	return vectors, nil
}

func (v *Vectorizer) vectorize(terms []string) Vector {
	vec := make(Vector)
	for _, term := range terms {
		idx, ok := v.vocabulary[term]
		if !ok {
			continue
		}
		vec[idx] += v.idf[idx]
	}

	// L2 normalize so cosine similarity reduces to a dot product.
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx, w := range vec {
			vec[idx] = w / norm
		}
	}
	return vec
}

// CosineSimilarity returns the cosine similarity of two normalized vectors.
func CosineSimilarity(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		if other, ok := b[idx]; ok {
			dot += w * other
		}
	}
	return dot
}

// NearestNeighbors returns, for every vector, the indices of its k nearest
// neighbors by cosine distance, excluding itself, nearest first. Ties break
// on the lower index so results are deterministic.
func NearestNeighbors(vectors []Vector, k int) [][]int {
	n := len(vectors)
	if k > n-1 {
		k = n - 1
	}
	result := make([][]int, n)
	if k <= 0 {
		for i := range result {
			result[i] = nil
		}
		return result
	}

	type scored struct {
		index    int
		distance float64
	}

	for i := 0; i < n; i++ {
		candidates := make([]scored, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			candidates = append(candidates, scored{
				index:    j,
				distance: 1 - CosineSimilarity(vectors[i], vectors[j]),
			})
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].distance != candidates[b].distance {
				return candidates[a].distance < candidates[b].distance
			}
			return candidates[a].index < candidates[b].index
		})

		neighbors := make([]int, k)
		for j := 0; j < k; j++ {
			neighbors[j] = candidates[j].index
		}
		result[i] = neighbors
	}
	return result
}

// tokenize lowercases and splits on non-alphanumeric runes, keeping tokens of
// at least two characters.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ngrams expands a token slice with its bigrams.
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
