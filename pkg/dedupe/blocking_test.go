package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestBuildBlocks(t *testing.T) {
	records := []models.Record{
		{"jobtype": "Vollzeit", "city": "Berlin"},
		{"jobtype": "Teilzeit", "city": "Berlin"},
		{"jobtype": "Vollzeit", "city": "Berlin"},
		{"city": "Hamburg"},
	}

	t.Run("groups by exact fields", func(t *testing.T) {
		blocks := BuildBlocks(records, []string{"jobtype"})
		require.Len(t, blocks, 3)
		assert.Equal(t, []int{0, 2}, blocks[0].Indices)
		assert.Equal(t, []int{1}, blocks[1].Indices)
		assert.Equal(t, []int{3}, blocks[2].Indices)
	})

	t.Run("missing field becomes empty key part", func(t *testing.T) {
		blocks := BuildBlocks(records, []string{"jobtype", "city"})
		require.Len(t, blocks, 3)
		assert.Equal(t, []int{3}, blocks[2].Indices)
	})

	t.Run("no exact fields yields one block", func(t *testing.T) {
		blocks := BuildBlocks(records, nil)
		require.Len(t, blocks, 1)
		assert.Equal(t, []int{0, 1, 2, 3}, blocks[0].Indices)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.Empty(t, BuildBlocks(nil, []string{"jobtype"}))
	})

	t.Run("block order follows first appearance", func(t *testing.T) {
		blocks := BuildBlocks(records, []string{"jobtype"})
		assert.Equal(t, 0, blocks[0].Indices[0])
		assert.Equal(t, 1, blocks[1].Indices[0])
	})
}

func TestGenerateCandidates(t *testing.T) {
	records := []models.Record{
		{"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht"},
		{"jobdescription": "Bibliothekar für die Stadtbibliothek Leipzig gesucht"},
		{"jobdescription": "Pilot für Langstreckenflüge gesucht"},
		{"jobdescription": "Koch für das Restaurant am Markt"},
	}
	block := Block{Indices: []int{0, 1, 2, 3}}

	t.Run("no self pairs and ordered indices", func(t *testing.T) {
		pairs, _ := generateCandidates(records, block, []string{"jobdescription"}, 2)
		for _, p := range pairs {
			assert.Less(t, p.I, p.J)
		}
	})

	t.Run("near duplicates become candidates", func(t *testing.T) {
		pairs, strategy := generateCandidates(records, block, []string{"jobdescription"}, 1)
		assert.Equal(t, StrategyBlocked, strategy)
		assert.Contains(t, pairs, Pair{I: 0, J: 1})
	})

	t.Run("no fuzzy fields falls back to full pairwise", func(t *testing.T) {
		pairs, strategy := generateCandidates(records, block, nil, 2)
		assert.Equal(t, StrategyFullPairwise, strategy)
		assert.Len(t, pairs, 6)
	})

	t.Run("empty text falls back to full pairwise", func(t *testing.T) {
		empty := []models.Record{{"jobdescription": ""}, {"jobdescription": "  "}}
		pairs, strategy := generateCandidates(empty, Block{Indices: []int{0, 1}}, []string{"jobdescription"}, 2)
		assert.Equal(t, StrategyFullPairwise, strategy)
		assert.Equal(t, []Pair{{I: 0, J: 1}}, pairs)
	})

	t.Run("single record block", func(t *testing.T) {
		pairs, _ := generateCandidates(records, Block{Indices: []int{2}}, []string{"jobdescription"}, 2)
		assert.Empty(t, pairs)
	})
}
