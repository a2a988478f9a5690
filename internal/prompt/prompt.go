// Package prompt renders generation requests for the patient-education
// assistant. Rendering is deterministic: the same question and context always
// produce the same prompt text.
package prompt

import (
	"strings"
)

// SystemStyle is the fixed instruction block prepended to every prompt. It
// enumerates the four mandatory output sections and the behavioral
// constraints the model must follow.
const SystemStyle = `You are a patient education and doctor-visit preparation assistant.
You MUST:
- Explain clearly in plain language.
- Be cautious and state uncertainty when needed.
- Ground your answer in the user-provided text/images when available.
- Provide a structured output with 4 sections:
  1) Plain-language summary
  2) Questions to ask a doctor
  3) Red flags (when to seek urgent care)
  4) What this is based on (quote from user-provided text if present)
You MUST NOT:
- Diagnose a condition or claim certainty from an image.
- Provide medication dosing or treatment plans.
- Replace professional medical evaluation.
If symptoms suggest emergency, advise seeking urgent care / local emergency services.`

// ContextHeader delimits the optional pasted-context block.
const ContextHeader = "USER-PROVIDED REPORT / NOTES:"

// Build concatenates the system-style block, the trimmed question, and, only
// when non-empty, a delimited block with the pasted context. Long context is
// passed through as-is; there is no retrieval, truncation, or summarization.
func Build(question, pastedContext string) string {
	var b strings.Builder

	b.WriteString(SystemStyle)
	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n")

	if trimmed := strings.TrimSpace(pastedContext); trimmed != "" {
		b.WriteString("\n")
		b.WriteString(ContextHeader)
		b.WriteString("\n")
		b.WriteString(trimmed)
		b.WriteString("\n")
	}

	return b.String()
}
