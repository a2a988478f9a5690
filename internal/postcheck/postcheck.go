// Package postcheck validates generated answers after the fact: it checks for
// the required structural sections and estimates groundedness in user-supplied
// context. Both checks are advisory; callers log failures but never block or
// alter the answer on their account.
package postcheck

import (
	"strings"
)

// requiredSections are the four headers every structured answer should carry,
// matched case-insensitively as substrings.
var requiredSections = []string{
	"Plain-language summary",
	"Questions to ask a doctor",
	"Red flags",
	"What this is based on",
}

// Report captures the outcome of both advisory checks for one answer.
type Report struct {
	SectionsOK   bool
	Groundedness float64
}

// Check runs both advisory checks against a generated answer.
func Check(answer, pastedContext string) Report {
	return Report{
		SectionsOK:   HasRequiredSections(answer),
		Groundedness: Groundedness(answer, pastedContext),
	}
}

// HasRequiredSections reports whether all four required section headers
// appear in the text.
func HasRequiredSections(text string) bool {
	lowered := strings.ToLower(text)
	for _, section := range requiredSections {
		if !strings.Contains(lowered, strings.ToLower(section)) {
			return false
		}
	}
	return true
}

// Groundedness is a heuristic proxy, not a semantic entailment check: when
// the user supplied context, an answer counts as grounded only if it visibly
// references user-provided content (the context marker, the phrase "based
// on", or a quotation). With no context supplied it trivially scores 1.
func Groundedness(answer, pastedContext string) float64 {
	if strings.TrimSpace(pastedContext) == "" {
		return 1.0
	}
	if strings.Contains(answer, "USER-PROVIDED") ||
		strings.Contains(strings.ToLower(answer), "based on") ||
		strings.Contains(answer, `"`) {
		return 1.0
	}
	return 0.0
}
