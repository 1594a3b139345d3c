package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "softwareentwickler mwd", NormalizeText("  Softwareentwickler (m/w/d) "))
	assert.Equal(t, "universität leipzig", NormalizeText("Universität   Leipzig"))
	assert.Equal(t, "", NormalizeText("  !!  "))

	t.Run("dotted abbreviation matches plain spelling", func(t *testing.T) {
		assert.Equal(t, "abc gmbh", NormalizeText("A.B.C. GmbH"))
		assert.Equal(t, NormalizeText("ABC GmbH"), NormalizeText("A.B.C. GmbH"))
	})

	t.Run("lone single letter is kept", func(t *testing.T) {
		assert.Equal(t, "gruppe a", NormalizeText("Gruppe A"))
	})
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "berlin", NormalizeLocation("  Berlin "))
	assert.Equal(t, NormalizeLocation("MÜNCHEN"), NormalizeLocation("münchen"))
}

func TestCompanyCore(t *testing.T) {
	stopWords := []string{"gmbh", "ag", "co", "kg", "bibliothek", "universität", "stadt"}

	t.Run("drops legal form", func(t *testing.T) {
		assert.Equal(t, "meyer sohn", CompanyCore("Meyer & Sohn GmbH", stopWords))
	})

	t.Run("drops institutional noun", func(t *testing.T) {
		assert.Equal(t, "leipzig", CompanyCore("Stadtbibliothek Leipzig Bibliothek", []string{"bibliothek", "stadtbibliothek"}))
	})

	t.Run("merged abbreviation hits the stop list", func(t *testing.T) {
		// "e.V." normalizes to the token "ev"
		assert.Equal(t, "heimatverein", CompanyCore("Heimatverein e.V.", []string{"ev"}))
	})

	t.Run("drops single letter fragments", func(t *testing.T) {
		assert.Equal(t, "gruppe", CompanyCore("Gruppe A", []string{"gmbh"}))
	})

	t.Run("all stop words yields empty core", func(t *testing.T) {
		assert.Equal(t, "", CompanyCore("GmbH & Co. KG", stopWords))
	})
}

func TestRegistry(t *testing.T) {
	t.Run("lookup by name", func(t *testing.T) {
		fn, ok := Get("lowercase")
		assert.True(t, ok)
		assert.Equal(t, "abc", fn("ABC"))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := Get("does_not_exist")
		assert.False(t, ok)
	})

	t.Run("apply chain", func(t *testing.T) {
		out := ApplyChain(" Foo  Bar ", "trim", "lowercase", "collapse_whitespace")
		assert.Equal(t, "foo bar", out)
	})
}
