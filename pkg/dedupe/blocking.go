package dedupe

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Block is a set of record indices sharing identical exact-field values.
type Block struct {
	Key     string
	Indices []int
}

// BuildBlocks partitions the batch by the composite exact-field key. Missing
// values group under the empty string; absence is a value, not a wildcard.
// With no exact fields the whole batch forms one block. Blocks keep their
// first-encounter order so runs are deterministic.
func BuildBlocks(records []models.Record, exactFields []string) []Block {
	if len(exactFields) == 0 {
		indices := make([]int, len(records))
		for i := range records {
			indices[i] = i
		}
		return []Block{{Key: "", Indices: indices}}
	}

	byKey := make(map[string]int)
	blocks := make([]Block, 0)

	for i, record := range records {
		parts := make([]string, len(exactFields))
		for j, field := range exactFields {
			value, ok := record.StringValue(field)
			if !ok {
				value = ""
			}
			parts[j] = value
		}
		key := strings.Join(parts, "_")

		pos, ok := byKey[key]
		if !ok {
			pos = len(blocks)
			byKey[key] = pos
			blocks = append(blocks, Block{Key: key})
		}
		blocks[pos].Indices = append(blocks[pos].Indices, i)
	}

	return blocks
}
