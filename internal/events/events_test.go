package events_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"healthcopilot/internal/events"
)

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestLog_RefusalShape(t *testing.T) {
	t.Parallel()

	var buf closableBuffer
	log := events.NewWithWriter(&buf, nil)

	log.Refusal("unsafe_request")

	var ev events.Event
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if ev.Type != events.TypeRefusal {
		t.Errorf("type = %q, want %q", ev.Type, events.TypeRefusal)
	}
	if ev.Reason != "unsafe_request" {
		t.Errorf("reason = %q", ev.Reason)
	}
	if ev.ID == "" {
		t.Error("event ID must be stamped")
	}
	if ev.TS.IsZero() || ev.TS.After(time.Now().UTC()) {
		t.Errorf("timestamp not stamped sanely: %v", ev.TS)
	}
	if ev.Urgent != nil || ev.SectionsOK != nil || ev.Groundedness != nil {
		t.Error("refusal events must not carry chat payload fields")
	}
}

func TestLog_ChatShape(t *testing.T) {
	t.Parallel()

	var buf closableBuffer
	log := events.NewWithWriter(&buf, nil)

	log.Chat(true, false, 0.0)

	// The chat payload uses the proxy field name on the wire.
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if raw["type"] != events.TypeChat {
		t.Errorf("type = %v", raw["type"])
	}
	if raw["urgent"] != true {
		t.Errorf("urgent = %v, want true", raw["urgent"])
	}
	if raw["sections_ok"] != false {
		t.Errorf("sections_ok = %v, want false", raw["sections_ok"])
	}
	if raw["groundedness_proxy"] != 0.0 {
		t.Errorf("groundedness_proxy = %v, want 0", raw["groundedness_proxy"])
	}
	if _, ok := raw["reason"]; ok {
		t.Error("chat events must omit the refusal reason")
	}
}

func TestLog_AppendOnlyLines(t *testing.T) {
	t.Parallel()

	var buf closableBuffer
	log := events.NewWithWriter(&buf, nil)

	log.Refusal("unsafe_request")
	log.Chat(false, true, 1.0)
	log.Refusal("unsafe_request")

	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	var ids []string
	for scanner.Scan() {
		var ev events.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		ids = append(ids, ev.ID)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(ids))
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate event ID %q", id)
		}
		seen[id] = true
	}
}

func TestLog_Close(t *testing.T) {
	t.Parallel()

	var buf closableBuffer
	log := events.NewWithWriter(&buf, nil)
	if err := log.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !buf.closed {
		t.Error("Close must close the underlying writer")
	}
}
