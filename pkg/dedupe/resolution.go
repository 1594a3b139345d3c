package dedupe

import (
	"sort"

	"github.com/Ramsey-B/clover/pkg/models"
)

// scoredPair is an accepted candidate pair with its aggregate probability.
// Indices refer to positions in the original batch.
type scoredPair struct {
	I           int
	J           int
	Probability int
}

// resolveLinks decides, per accepted pair, which record survives. A record is
// dropped at most once, and a record that already anchors a duplicate group
// is only dropped into another group when both sides of a pair are anchors.
// Ties on field richness resolve toward the earlier record in the batch.
func resolveLinks(records []models.Record, pairs []scoredPair) []models.DuplicateLink {
	dropped := make(map[int]bool)
	anchors := make(map[int]bool)
	links := make([]models.DuplicateLink, 0, len(pairs))

	for _, pair := range pairs {
		if dropped[pair.I] || dropped[pair.J] {
			continue
		}

		keep, drop := pair.I, pair.J
		switch {
		case anchors[pair.I] && anchors[pair.J]:
			// Both already keep other records. The poorer anchor is dropped
			// into the richer one's group so the cleaned set cannot link
			// against itself on a rerun; its own drops stay attributed to it.
			if records[pair.J].NonNullCount() > records[pair.I].NonNullCount() {
				keep, drop = pair.J, pair.I
			}
		case anchors[pair.J]:
			keep, drop = pair.J, pair.I
		case anchors[pair.I]:
			// keep, drop already oriented
		default:
			if records[pair.J].NonNullCount() > records[pair.I].NonNullCount() {
				keep, drop = pair.J, pair.I
			}
		}

		dropped[drop] = true
		anchors[keep] = true
		links = append(links, models.DuplicateLink{
			KeepIndex:   keep,
			DropIndex:   drop,
			Probability: pair.Probability,
		})
	}

	return links
}

// buildReport assembles the duplicate report from resolved links. Groups are
// numbered densely in the order their keep anchor first appears; the keep row
// carries the highest probability among its dropped members. An anchor that
// was itself dropped into another group appears only as a drop row there,
// while its own drops keep their attribution. Rows sort by probability
// descending, then group, then keep-before-drop.
func buildReport(records []models.Record, links []models.DuplicateLink) ([]models.ReportRow, []models.ExportRow) {
	pairIDs := make(map[int]int)
	keepProb := make(map[int]int)
	droppedIdx := make(map[int]bool, len(links))
	keepOrder := make([]int, 0, len(links))

	for _, link := range links {
		if _, ok := pairIDs[link.KeepIndex]; !ok {
			pairIDs[link.KeepIndex] = len(keepOrder)
			keepOrder = append(keepOrder, link.KeepIndex)
		}
		if link.Probability > keepProb[link.KeepIndex] {
			keepProb[link.KeepIndex] = link.Probability
		}
		droppedIdx[link.DropIndex] = true
	}

	rows := make([]models.ReportRow, 0, len(links)+len(keepOrder))
	duplicateOf := make(map[int]*int)

	for _, keep := range keepOrder {
		if droppedIdx[keep] {
			continue
		}
		rows = append(rows, models.ReportRow{
			Record:      records[keep].Clone(),
			Keep:        true,
			PairID:      pairIDs[keep],
			OrigIndex:   keep,
			Probability: keepProb[keep],
		})
		duplicateOf[keep] = nil
	}
	for _, link := range links {
		keepIdx := link.KeepIndex
		rows = append(rows, models.ReportRow{
			Record:      records[link.DropIndex].Clone(),
			Keep:        false,
			PairID:      pairIDs[link.KeepIndex],
			OrigIndex:   link.DropIndex,
			Probability: link.Probability,
		})
		duplicateOf[link.DropIndex] = &keepIdx
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Probability != rows[j].Probability {
			return rows[i].Probability > rows[j].Probability
		}
		if rows[i].PairID != rows[j].PairID {
			return rows[i].PairID < rows[j].PairID
		}
		return rows[i].Keep && !rows[j].Keep
	})

	export := make([]models.ExportRow, len(rows))
	for i, row := range rows {
		export[i] = models.ExportRow{
			ReportRow:   row,
			DuplicateOf: duplicateOf[row.OrigIndex],
		}
	}

	return rows, export
}

// cleanedSet returns the batch with dropped records removed, preserving the
// original relative order of the survivors.
func cleanedSet(records []models.Record, links []models.DuplicateLink) []models.Record {
	dropped := make(map[int]bool, len(links))
	for _, link := range links {
		dropped[link.DropIndex] = true
	}

	cleaned := make([]models.Record, 0, len(records)-len(dropped))
	for i, r := range records {
		if !dropped[i] {
			cleaned = append(cleaned, r)
		}
	}
	return cleaned
}
