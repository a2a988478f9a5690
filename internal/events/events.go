// Package events implements the append-only pipeline telemetry sink: one
// JSON object per line, written to a file whose path is injected at
// construction time. Records are write-once; nothing in the application reads
// them back or mutates them.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeRefusal = "refusal"
	TypeChat    = "chat"
)

// Event is one immutable telemetry record describing the outcome of a single
// pipeline execution.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	TS   time.Time `json:"ts"`

	// Refusal payload.
	Reason string `json:"reason,omitempty"`

	// Chat payload.
	Urgent       *bool    `json:"urgent,omitempty"`
	SectionsOK   *bool    `json:"sections_ok,omitempty"`
	Groundedness *float64 `json:"groundedness_proxy,omitempty"`
}

// Log appends pipeline events to a line-oriented JSON sink. Writes are
// serialized; concurrent callers never interleave partial lines.
type Log struct {
	mu     sync.Mutex
	w      io.WriteCloser
	logger *slog.Logger
}

// Open creates or opens the sink file at path in append mode.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}

	return &Log{w: f, logger: logger.With("component", "events")}, nil
}

// NewWithWriter wraps an existing writer; used by tests.
func NewWithWriter(w io.WriteCloser, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{w: w, logger: logger.With("component", "events")}
}

// Close closes the underlying sink.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}

// Refusal records a blocked request with the guardrail reason.
func (l *Log) Refusal(reason string) {
	l.append(Event{Type: TypeRefusal, Reason: reason})
}

// Chat records one completed pipeline execution: whether the input was
// urgent, whether the answer carried all required sections, and the
// groundedness proxy score.
func (l *Log) Chat(urgent, sectionsOK bool, groundedness float64) {
	l.append(Event{
		Type:         TypeChat,
		Urgent:       &urgent,
		SectionsOK:   &sectionsOK,
		Groundedness: &groundedness,
	})
}

// append stamps and writes one event. Telemetry failures are logged and
// swallowed: the answer path never fails because the sink does.
func (l *Log) append(ev Event) {
	ev.ID = uuid.NewString()
	ev.TS = time.Now().UTC()

	line, err := json.Marshal(ev)
	if err != nil {
		l.logger.Error("Failed to marshal telemetry event", "type", ev.Type, "error", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(line); err != nil {
		l.logger.Error("Failed to write telemetry event", "type", ev.Type, "error", err)
	}
}
