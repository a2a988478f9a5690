// Package guardrail classifies raw user input against unsafe and
// urgent-symptom rule tables before any model call is made.
//
// Matching is word-boundary substring matching, not semantic: paraphrased
// unsafe requests will slip through. That is a known limitation of this
// rule-based gate, documented rather than hidden.
package guardrail

// Urgency levels attached to an allowed verdict.
const (
	UrgencyRoutine = "routine"
	UrgencyUrgent  = "urgent"
)

// Verdict reasons.
const (
	ReasonUnsafe = "unsafe_request"
	ReasonUrgent = "urgent_symptoms_detected"
)

// OverrideText is the fixed response returned in place of a generated answer
// when input is blocked.
const OverrideText = "I can't help with that request. If this is a medical concern, " +
	"please contact a licensed clinician. If you're in immediate danger, " +
	"seek local emergency help right now."

// Verdict is the outcome of classifying one piece of input text.
// It is transient and never persisted.
type Verdict struct {
	Allowed      bool
	Reason       string
	Urgency      string
	OverrideText string
}

// Engine evaluates input text against an ordered rule table.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine using the default rule table.
func NewEngine() *Engine {
	return &Engine{rules: DefaultRules()}
}

// NewEngineWithRules returns an engine using a custom rule table, evaluated
// in the given order. Unsafe rules must precede urgent ones for the standard
// priority semantics.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Classify evaluates the rules in order against the case-normalized input and
// returns the verdict of the first matching rule. Unsafe matches block the
// input with the fixed override text and run no further checks; urgent
// matches allow it with urgency raised; no match at all is routine.
//
// Classify is a pure function of its input: it has no side effects, and the
// caller is responsible for logging the verdict.
func (e *Engine) Classify(text string) Verdict {
	normalized := normalize(text)

	for _, rule := range e.rules {
		if !rule.pattern.MatchString(normalized) {
			continue
		}
		switch rule.Category {
		case CategoryUnsafe:
			return Verdict{
				Allowed:      false,
				Reason:       ReasonUnsafe,
				Urgency:      UrgencyRoutine,
				OverrideText: OverrideText,
			}
		case CategoryUrgent:
			return Verdict{
				Allowed: true,
				Reason:  ReasonUrgent,
				Urgency: UrgencyUrgent,
			}
		}
	}

	return Verdict{Allowed: true, Urgency: UrgencyRoutine}
}
