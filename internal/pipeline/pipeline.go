// Package pipeline composes the guardrail engine, prompt builder, generation
// client, response checks, and telemetry into the end-to-end chat flow. It is
// the only component with cross-cutting control flow; persistence of the
// exchange stays with the caller.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"healthcopilot/internal/ai"
	"healthcopilot/internal/events"
	"healthcopilot/internal/guardrail"
	"healthcopilot/internal/postcheck"
	"healthcopilot/internal/prompt"
)

// UrgentBanner is the fixed cautionary note prepended to answers when the
// guardrail raised urgency.
const UrgentBanner = "⚠️ **Urgent note:** Some symptoms you mentioned can be serious. " +
	"If you feel unsafe or symptoms are severe/worsening, seek urgent care or local emergency services.\n\n"

// ChatRequest carries one user turn through the pipeline.
type ChatRequest struct {
	Question      string
	PastedContext string
	ImageData     []byte
	ImageMIME     string
}

// ChatResult is the outcome of one pipeline pass.
type ChatResult struct {
	Answer       string
	Refused      bool
	Urgent       bool
	SectionsOK   bool
	Groundedness float64
}

// Orchestrator runs the single-pass chat pipeline:
// classify → (refuse | build prompt → generate → post-check → finalize).
type Orchestrator struct {
	guard  *guardrail.Engine
	client ai.Client
	events *events.Log
	log    *slog.Logger
}

// New creates an orchestrator over the given collaborators.
func New(guard *guardrail.Engine, client ai.Client, eventLog *events.Log, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		guard:  guard,
		client: client,
		events: eventLog,
		log:    log.With("component", "pipeline"),
	}
}

// Chat processes one user turn. Blocked input short-circuits with the fixed
// override text and no generation call. Generation failures propagate to the
// caller as fatal for the request: there is no retry here. Post-generation
// checks are advisory only; their results are logged and reported but never
// block or alter the answer, beyond the urgent banner.
func (o *Orchestrator) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	verdict := o.guard.Classify(req.Question + "\n" + req.PastedContext)

	if !verdict.Allowed {
		o.log.InfoContext(ctx, "Request refused by guardrail", "reason", verdict.Reason)
		o.events.Refusal(verdict.Reason)
		return &ChatResult{Answer: verdict.OverrideText, Refused: true}, nil
	}

	promptText := prompt.Build(req.Question, req.PastedContext)

	answer, err := o.client.Generate(ctx, &ai.GenerateRequest{
		Prompt:    promptText,
		ImageData: req.ImageData,
		ImageMIME: req.ImageMIME,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	report := postcheck.Check(answer, req.PastedContext)
	if !report.SectionsOK {
		o.log.WarnContext(ctx, "Generated answer is missing required sections")
	}
	if report.Groundedness < 1.0 {
		o.log.WarnContext(ctx, "Generated answer does not reference user-provided context", "groundedness", report.Groundedness)
	}

	urgent := verdict.Urgency == guardrail.UrgencyUrgent
	o.events.Chat(urgent, report.SectionsOK, report.Groundedness)

	if urgent {
		answer = UrgentBanner + answer
	}

	return &ChatResult{
		Answer:       answer,
		Urgent:       urgent,
		SectionsOK:   report.SectionsOK,
		Groundedness: report.Groundedness,
	}, nil
}

// Transcribe forwards audio to the speech-to-text collaborator. An empty
// transcript means no recognizable speech; it is not an error.
func (o *Orchestrator) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return o.client.Transcribe(ctx, audio, mimeType)
}
