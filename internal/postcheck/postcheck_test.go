package postcheck_test

import (
	"testing"

	"healthcopilot/internal/postcheck"
)

const structuredAnswer = `1) Plain-language summary
Your report shows slightly elevated LDL cholesterol.

2) Questions to ask a doctor
- Should I repeat this test?

3) Red flags (when to seek urgent care)
- Chest pain or shortness of breath.

4) What this is based on
Based on the values in your report.`

func TestHasRequiredSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "All sections present", text: structuredAnswer, want: true},
		{name: "Case-insensitive match", text: "PLAIN-LANGUAGE SUMMARY questions to ask a doctor RED FLAGS what this is based on", want: true},
		{name: "Missing red flags", text: "Plain-language summary\nQuestions to ask a doctor\nWhat this is based on", want: false},
		{name: "Empty", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := postcheck.HasRequiredSections(tt.text); got != tt.want {
				t.Errorf("HasRequiredSections() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroundedness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  string
		context string
		want    float64
	}{
		{name: "No context is trivially grounded", answer: "anything", context: "", want: 1.0},
		{name: "References the context marker", answer: "Per the USER-PROVIDED notes, your LDL is 160.", context: "LDL: 160", want: 1.0},
		{name: "Uses based-on phrasing", answer: "This is based on your report values.", context: "LDL: 160", want: 1.0},
		{name: "Quotes the source", answer: `Your report says "LDL 160 mg/dL".`, context: "LDL: 160", want: 1.0},
		{name: "Ignores the context entirely", answer: "Cholesterol is a lipid.", context: "LDL: 160", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := postcheck.Groundedness(tt.answer, tt.context); got != tt.want {
				t.Errorf("Groundedness() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	report := postcheck.Check(structuredAnswer, "LDL: 160 mg/dL")
	if !report.SectionsOK {
		t.Error("expected SectionsOK for a fully structured answer")
	}
	if report.Groundedness != 1.0 {
		t.Errorf("Groundedness = %v, want 1.0", report.Groundedness)
	}
}
