package dedupe

import "github.com/Ramsey-B/clover/pkg/models"

// comparison is the tri-state outcome of comparing one field across a pair.
// Null handling lives here and nowhere else: two present values can match or
// contradict, while a null on either side is uninformative.
type comparison int

const (
	comparisonMatch comparison = iota
	comparisonNoMatch
	comparisonUninformative
)

// compareStrings classifies a string field across both records using the
// given predicate for two present values.
func compareStrings(a, b models.Record, field string, matches func(va, vb string) bool) comparison {
	va, okA := a.StringValue(field)
	vb, okB := b.StringValue(field)
	if !okA || !okB {
		return comparisonUninformative
	}
	if matches(va, vb) {
		return comparisonMatch
	}
	return comparisonNoMatch
}
