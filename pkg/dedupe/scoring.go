package dedupe

import (
	"math"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

// noSignalScore is the aggregate assigned when no configured field is
// informative for a pair.
const noSignalScore = 95

// scorer turns a gated candidate pair into an aggregate 0-100 probability.
// Each configured field contributes a score or vetoes the pair; the aggregate
// is the rounded mean of the contributing scores.
type scorer struct {
	def       *models.RulesetDefinition
	cfg       Config
	threshold int
}

func newScorer(def *models.RulesetDefinition, cfg Config, threshold int) *scorer {
	return &scorer{def: def, cfg: cfg, threshold: threshold}
}

// Score returns the aggregate probability for the pair and whether it clears
// the acceptance threshold. A zero probability with ok=false means some field
// vetoed the pair.
func (s *scorer) Score(a, b models.Record) (int, bool) {
	var scores []int

	for _, field := range s.def.FuzzyFields {
		score, result := s.scoreFuzzy(a, b, field)
		switch result {
		case comparisonNoMatch:
			return 0, false
		case comparisonMatch:
			scores = append(scores, score)
		}
	}

	for _, field := range s.def.NumericFields {
		score, result := s.scoreNumeric(a, b, field)
		switch result {
		case comparisonNoMatch:
			return 0, false
		case comparisonMatch:
			scores = append(scores, score)
		}
	}

	if s.contradicts(a, b) {
		return 0, false
	}

	// A pair with no informative fields scores the fixed neutral 95, not the
	// run threshold. Raising the threshold past 95 therefore rejects such
	// pairs instead of silently accepting them.
	probability := noSignalScore
	if len(scores) > 0 {
		sum := 0
		for _, sc := range scores {
			sum += sc
		}
		probability = int(math.Round(float64(sum) / float64(len(scores))))
	}

	return probability, probability >= s.threshold
}

// scoreFuzzy compares a text field. Both sides null is uninformative; one
// side null rejects, since a present value with no counterpart usually marks
// a genuinely different posting.
func (s *scorer) scoreFuzzy(a, b models.Record, field string) (int, comparison) {
	va, okA := a.StringValue(field)
	vb, okB := b.StringValue(field)
	if !okA && !okB {
		return 0, comparisonUninformative
	}
	if okA != okB {
		return 0, comparisonNoMatch
	}

	score := similarity.TokenSetRatio(va, vb)
	if score < s.fuzzyMinScore(field) {
		return 0, comparisonNoMatch
	}
	return score, comparisonMatch
}

func (s *scorer) fuzzyMinScore(field string) int {
	if field == s.def.PrimaryTextField {
		return s.cfg.PrimaryFieldMinScore
	}
	return s.cfg.FuzzyFieldMinScore
}

// scoreNumeric maps the absolute difference onto 0-100 relative to the
// field's tolerance. Values at or beyond the tolerance score zero.
func (s *scorer) scoreNumeric(a, b models.Record, field string) (int, comparison) {
	va, okA, errA := a.FloatValue(field)
	vb, okB, errB := b.FloatValue(field)
	if errA != nil || errB != nil {
		return 0, comparisonNoMatch
	}
	if !okA && !okB {
		return 0, comparisonUninformative
	}
	if okA != okB {
		return 0, comparisonNoMatch
	}

	tolerance := s.cfg.DefaultTolerance
	if t, ok := s.def.NumericTolerances[field]; ok && t > 0 {
		tolerance = t
	}

	diff := math.Abs(va - vb)
	score := int(math.Round(100 * (1 - math.Min(diff/tolerance, 1))))
	if score < s.cfg.NumericFieldMinScore {
		return 0, comparisonNoMatch
	}
	return score, comparisonMatch
}

// contradicts scans the combined fuzzy text of each record for mutually
// exclusive term pairs, e.g. "vollzeit" on one side and "teilzeit" on the
// other. Terms match whole tokens, so "unbefristet" does not count as a
// mention of "befristet". A side mentioning both terms stays neutral.
func (s *scorer) contradicts(a, b models.Record) bool {
	tokensA := s.fuzzyTokens(a)
	tokensB := s.fuzzyTokens(b)

	for _, pair := range s.def.ContradictionPairs {
		termA := strings.ToLower(pair.A)
		termB := strings.ToLower(pair.B)

		aHasA := tokensA[termA]
		aHasB := tokensA[termB]
		bHasA := tokensB[termA]
		bHasB := tokensB[termB]

		if aHasA && !aHasB && bHasB && !bHasA {
			return true
		}
		if aHasB && !aHasA && bHasA && !bHasB {
			return true
		}
	}
	return false
}

func (s *scorer) fuzzyTokens(r models.Record) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range s.def.FuzzyFields {
		if v, ok := r.StringValue(field); ok {
			for _, tok := range strings.Fields(normalizers.NormalizeText(v)) {
				tokens[tok] = true
			}
		}
	}
	return tokens
}
