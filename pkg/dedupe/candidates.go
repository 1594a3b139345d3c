package dedupe

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tfidf"
)

// CandidateStrategy names how a block's candidate pairs were produced.
type CandidateStrategy string

const (
	// StrategyBlocked retrieves each record's k nearest neighbors over the
	// block's TF-IDF vectors.
	StrategyBlocked CandidateStrategy = "blocked"
	// StrategyFullPairwise compares every pair in the block. Selected when
	// the vectorizer cannot fit; correctness over throughput.
	StrategyFullPairwise CandidateStrategy = "full_pairwise"
)

// Pair is an unordered candidate pair of batch indices, stored with I < J.
type Pair struct {
	I int
	J int
}

// generateCandidates proposes the pairs to score for one block. The expected
// output size is n*k rather than n^2/2. Output is deduplicated, sorted, and
// never contains self-pairs.
func generateCandidates(records []models.Record, block Block, fuzzyFields []string, k int) ([]Pair, CandidateStrategy) {
	n := len(block.Indices)
	if n < 2 {
		return nil, StrategyBlocked
	}

	if len(fuzzyFields) == 0 || k <= 0 {
		return fullPairwise(block), StrategyFullPairwise
	}

	texts := make([]string, n)
	for pos, idx := range block.Indices {
		parts := make([]string, 0, len(fuzzyFields))
		for _, field := range fuzzyFields {
			value, ok := records[idx].StringValue(field)
			if !ok {
				value = ""
			}
			parts = append(parts, value)
		}
		texts[pos] = strings.Join(parts, " ")
	}

	vectorizer := tfidf.NewVectorizer()
	vectors, err := vectorizer.FitTransform(texts)
	if err != nil {
		return fullPairwise(block), StrategyFullPairwise
	}

	neighbors := tfidf.NearestNeighbors(vectors, k)

	seen := make(map[Pair]bool)
	pairs := make([]Pair, 0, n*k)
	for pos, nbrs := range neighbors {
		for _, nbr := range nbrs {
			i := block.Indices[pos]
			j := block.Indices[nbr]
			if i == j {
				continue
			}
			if j < i {
				i, j = j, i
			}
			p := Pair{I: i, J: j}
			if !seen[p] {
				seen[p] = true
				pairs = append(pairs, p)
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs, StrategyBlocked
}

func fullPairwise(block Block) []Pair {
	pairs := make([]Pair, 0, len(block.Indices)*(len(block.Indices)-1)/2)
	for a := 0; a < len(block.Indices); a++ {
		for b := a + 1; b < len(block.Indices); b++ {
			i := block.Indices[a]
			j := block.Indices[b]
			if j < i {
				i, j = j, i
			}
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}
