package guardrail

import (
	"regexp"
	"strings"
)

// Category determines how a matching rule resolves.
type Category string

const (
	// CategoryUnsafe blocks the request outright.
	CategoryUnsafe Category = "unsafe"
	// CategoryUrgent allows the request but raises its urgency.
	CategoryUrgent Category = "urgent"
)

// Rule is one entry in the data-driven policy table: a category, a name for
// auditing, and a compiled word-boundary pattern.
type Rule struct {
	Category Category
	Name     string
	pattern  *regexp.Regexp
}

// MustRule compiles a rule from a word-boundary pattern. It panics on an
// invalid pattern, which is acceptable for the static table below and for
// test fixtures.
func MustRule(category Category, name, pattern string) Rule {
	return Rule{
		Category: category,
		Name:     name,
		pattern:  regexp.MustCompile(pattern),
	}
}

// DefaultRules returns the standard policy table. Unsafe rules come first:
// the engine evaluates the table in order and stops at the first match, so
// an unsafe phrase always wins over an urgent one in the same text.
func DefaultRules() []Rule {
	return []Rule{
		MustRule(CategoryUnsafe, "dosing_request", `\b(dose|dosage|mg|milligram|prescribe)\b`),
		MustRule(CategoryUnsafe, "self_harm", `\b(suicide|kill myself|self-harm)\b`),
		MustRule(CategoryUnsafe, "weapon_construction", `\b(make a bomb|explosive)\b`),

		MustRule(CategoryUrgent, "cardiorespiratory", `\b(chest pain|shortness of breath|trouble breathing)\b`),
		MustRule(CategoryUrgent, "stroke_signs", `\b(face droop|slurred speech|one-sided weakness)\b`),
		MustRule(CategoryUrgent, "bleeding_unconsciousness", `\b(severe bleeding|passed out|unconscious)\b`),
	}
}

func normalize(text string) string {
	return strings.ToLower(text)
}
