package dedupe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

const (
	companyGateMinScore  = 85
	locationGateMinScore = 90
)

// salaryGradeRe extracts the pay-grade number and an optional alphabetic
// suffix from strings like "E9", "E 13", "TV-L E13" or "E9b".
var salaryGradeRe = regexp.MustCompile(`(?i)(\d{1,2})\s*([a-zäöü]*)`)

// gate applies the cheap field-specific pre-filters before full scoring. Any
// failing check rejects the pair outright.
type gate struct {
	def *models.RulesetDefinition
}

func newGate(def *models.RulesetDefinition) *gate {
	return &gate{def: def}
}

// Compatible reports whether the pair survives all gate checks.
func (g *gate) Compatible(a, b models.Record) bool {
	if g.def.SalaryField != "" && !g.salaryCompatible(a, b) {
		return false
	}
	if g.def.CompanyField != "" && !g.companyCompatible(a, b) {
		return false
	}
	if g.def.LocationField != "" && !g.locationCompatible(a, b) {
		return false
	}
	return true
}

// salaryCompatible requires parsed grades to differ by at most one; at equal
// grades, suffixes must be equal, absent, or one must contain the other. A
// side that fails to parse is uninformative, not incompatible.
func (g *gate) salaryCompatible(a, b models.Record) bool {
	result := compareStrings(a, b, g.def.SalaryField, func(va, vb string) bool {
		gradeA, suffixA, okA := parseSalaryGrade(va)
		gradeB, suffixB, okB := parseSalaryGrade(vb)
		if !okA || !okB {
			return true
		}

		diff := gradeA - gradeB
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			return false
		}
		if diff == 1 {
			return true
		}

		if suffixA == suffixB || suffixA == "" || suffixB == "" {
			return true
		}
		return strings.Contains(suffixA, suffixB) || strings.Contains(suffixB, suffixA)
	})
	return result != comparisonNoMatch
}

// companyCompatible strips legal forms and institutional nouns, then demands
// token-order-insensitive similarity on the remaining cores. Short cores are
// not penalized; they carry too little signal to judge.
func (g *gate) companyCompatible(a, b models.Record) bool {
	result := compareStrings(a, b, g.def.CompanyField, func(va, vb string) bool {
		coreA := normalizers.CompanyCore(va, g.def.CompanyStopWords)
		coreB := normalizers.CompanyCore(vb, g.def.CompanyStopWords)
		minLen := g.def.CompanyMinCoreLength
		if len([]rune(coreA)) < minLen || len([]rune(coreB)) < minLen {
			return true
		}
		return similarity.TokenSortRatio(coreA, coreB) >= companyGateMinScore
	})
	return result != comparisonNoMatch
}

// locationCompatible passes on exact match after trimming and lower-casing,
// otherwise requires near-exact similarity.
func (g *gate) locationCompatible(a, b models.Record) bool {
	result := compareStrings(a, b, g.def.LocationField, func(va, vb string) bool {
		na := normalizers.NormalizeLocation(va)
		nb := normalizers.NormalizeLocation(vb)
		if na == nb {
			return true
		}
		return similarity.Ratio(na, nb) >= locationGateMinScore
	})
	return result != comparisonNoMatch
}

// parseSalaryGrade pulls the first grade number and trailing suffix out of a
// salary string. ok is false when no grade is present.
func parseSalaryGrade(s string) (grade int, suffix string, ok bool) {
	match := salaryGradeRe.FindStringSubmatch(s)
	if match == nil {
		return 0, "", false
	}
	grade, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", false
	}
	return grade, strings.ToLower(match[2]), true
}
