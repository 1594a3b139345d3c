// Package normalizers provides field normalization functions for duplicate detection
package normalizers

import (
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("collapse_whitespace", CollapseWhitespace)
	Register("nonword", NonWordToSpace)
	Register("ntext", NormalizeText)
	Register("nlocation", NormalizeLocation)
	Register("digits_only", DigitsOnly)
	Register("alphanumeric", Alphanumeric)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// CollapseWhitespace replaces runs of whitespace with a single space
func CollapseWhitespace(s string) string {
	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		result.WriteRune(r)
		prevSpace = false
	}
	return strings.TrimSpace(result.String())
}

// NonWordToSpace replaces every run of non-letter, non-digit characters with a
// single space.
func NonWordToSpace(s string) string {
	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			result.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(result.String())
}

// NormalizeText lowercases and strips punctuation for similarity comparison.
// Runs of single-letter tokens left behind by dotted abbreviations ("A.B.C.",
// "e.V.") are merged back into one token so the dotted and plain spellings
// normalize to the same text.
func NormalizeText(s string) string {
	return mergeInitialisms(NonWordToSpace(strings.ToLower(s)))
}

func mergeInitialisms(s string) string {
	tokens := strings.Fields(s)
	merged := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		j := i
		for j < len(tokens) && len([]rune(tokens[j])) == 1 {
			j++
		}
		if j-i >= 2 {
			merged = append(merged, strings.Join(tokens[i:j], ""))
			i = j
			continue
		}
		merged = append(merged, tokens[i])
		i++
	}
	return strings.Join(merged, " ")
}

// NormalizeLocation normalizes a place name for comparison (lowercase, trim,
// collapse whitespace)
func NormalizeLocation(s string) string {
	return CollapseWhitespace(strings.ToLower(strings.TrimSpace(s)))
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// CompanyCore reduces a company name to its distinctive core: lowercase, strip
// the stop words (legal forms and generic institutional nouns), collapse
// whitespace. A short core carries too little signal to judge and callers skip
// the comparison.
func CompanyCore(s string, stopWords []string) string {
	s = NormalizeText(s)
	if s == "" {
		return ""
	}

	stop := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		stop[NormalizeText(w)] = true
	}

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		// Isolated single letters carry no signal
		if len([]rune(tok)) <= 1 {
			continue
		}
		if !stop[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}
