package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcopilot/internal/ai"
	"healthcopilot/internal/events"
	"healthcopilot/internal/guardrail"
	"healthcopilot/internal/pipeline"
)

type fakeClient struct {
	answer        string
	err           error
	generateCalls int
	lastPrompt    string
	lastImage     []byte
}

func (f *fakeClient) Generate(_ context.Context, req *ai.GenerateRequest) (string, error) {
	f.generateCalls++
	f.lastPrompt = req.Prompt
	f.lastImage = req.ImageData
	return f.answer, f.err
}

func (f *fakeClient) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return "transcript", nil
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func newTestOrchestrator(client ai.Client) (*pipeline.Orchestrator, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	eventLog := events.NewWithWriter(nopCloser{buf}, nil)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.New(guardrail.NewEngine(), client, eventLog, log), buf
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []events.Event {
	t.Helper()
	var out []events.Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev events.Event
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		out = append(out, ev)
	}
	return out
}

func TestChat_RefusedInputSkipsGeneration(t *testing.T) {
	t.Parallel()

	client := &fakeClient{answer: "should never be used"}
	orch, buf := newTestOrchestrator(client)

	result, err := orch.Chat(context.Background(), &pipeline.ChatRequest{
		Question: "what dosage of amoxicillin should I take",
	})
	require.NoError(t, err)

	assert.True(t, result.Refused)
	assert.Equal(t, guardrail.OverrideText, result.Answer)
	assert.Zero(t, client.generateCalls, "blocked input must not reach the model")

	evs := decodeEvents(t, buf)
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeRefusal, evs[0].Type)
	assert.Equal(t, guardrail.ReasonUnsafe, evs[0].Reason)
}

func TestChat_UnsafePastedContextAlsoBlocks(t *testing.T) {
	t.Parallel()

	client := &fakeClient{answer: "unused"}
	orch, _ := newTestOrchestrator(client)

	result, err := orch.Chat(context.Background(), &pipeline.ChatRequest{
		Question:      "can you summarize this note",
		PastedContext: "patient asked how to make a bomb",
	})
	require.NoError(t, err)

	assert.True(t, result.Refused)
	assert.Zero(t, client.generateCalls)
}

func TestChat_RoutineFlow(t *testing.T) {
	t.Parallel()

	answer := `1) Plain-language summary
ok
2) Questions to ask a doctor
ok
3) Red flags
ok
4) What this is based on
Based on your report.`
	client := &fakeClient{answer: answer}
	orch, buf := newTestOrchestrator(client)

	result, err := orch.Chat(context.Background(), &pipeline.ChatRequest{
		Question:      "what does LDL mean?",
		PastedContext: "LDL: 160 mg/dL",
	})
	require.NoError(t, err)

	assert.False(t, result.Refused)
	assert.False(t, result.Urgent)
	assert.Equal(t, answer, result.Answer, "routine answers carry no banner")
	assert.True(t, result.SectionsOK)
	assert.Equal(t, 1.0, result.Groundedness)
	assert.Equal(t, 1, client.generateCalls)
	assert.Contains(t, client.lastPrompt, "LDL: 160 mg/dL", "pasted context must reach the prompt")

	evs := decodeEvents(t, buf)
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeChat, evs[0].Type)
	require.NotNil(t, evs[0].Urgent)
	assert.False(t, *evs[0].Urgent)
}

func TestChat_UrgentInputGetsBanner(t *testing.T) {
	t.Parallel()

	client := &fakeClient{answer: "see a clinician soon"}
	orch, buf := newTestOrchestrator(client)

	result, err := orch.Chat(context.Background(), &pipeline.ChatRequest{
		Question: "I have chest pain when climbing stairs",
	})
	require.NoError(t, err)

	assert.False(t, result.Refused)
	assert.True(t, result.Urgent)
	assert.True(t, strings.HasPrefix(result.Answer, pipeline.UrgentBanner))
	assert.Equal(t, pipeline.UrgentBanner+"see a clinician soon", result.Answer)

	evs := decodeEvents(t, buf)
	require.Len(t, evs, 1)
	require.NotNil(t, evs[0].Urgent)
	assert.True(t, *evs[0].Urgent)
}

func TestChat_GenerationErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend unavailable")
	client := &fakeClient{err: wantErr}
	orch, buf := newTestOrchestrator(client)

	result, err := orch.Chat(context.Background(), &pipeline.ChatRequest{Question: "what is HDL?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, result)
	assert.Empty(t, buf.String(), "failed generations emit no chat event")
}

func TestChat_ImageForwardedToClient(t *testing.T) {
	t.Parallel()

	client := &fakeClient{answer: "looks like a standard chest x-ray report"}
	orch, _ := newTestOrchestrator(client)

	image := []byte{0x89, 0x50, 0x4e, 0x47}
	_, err := orch.Chat(context.Background(), &pipeline.ChatRequest{
		Question:  "what should I ask about this scan?",
		ImageData: image,
		ImageMIME: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, image, client.lastImage)
}

func TestTranscribe_Passthrough(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeClient{})
	got, err := orch.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/ogg")
	require.NoError(t, err)
	assert.Equal(t, "transcript", got)
}
