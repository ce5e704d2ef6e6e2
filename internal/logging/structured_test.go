package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		events = append(events, e)
	}
	return events
}

func TestLoggerContext(t *testing.T) {
	logger := New("store").WithProject("-home-me-app").WithSession("abc")

	if logger.component != "store" {
		t.Errorf("expected component 'store', got %q", logger.component)
	}
	if logger.project != "-home-me-app" {
		t.Errorf("expected project '-home-me-app', got %q", logger.project)
	}
	if logger.session != "abc" {
		t.Errorf("expected session 'abc', got %q", logger.session)
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	buf := captureOutput(t)

	New("store").WithSession("s1").Warn("scan.skip_file", map[string]any{"path": "/x.jsonl"}, errors.New("permission denied"))

	events := decodeLines(t, buf)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Level != LevelWarn {
		t.Errorf("expected level warn, got %q", e.Level)
	}
	if e.Component != "store" || e.Event != "scan.skip_file" {
		t.Errorf("unexpected component/event: %q/%q", e.Component, e.Event)
	}
	if e.Session != "s1" {
		t.Errorf("expected session s1, got %q", e.Session)
	}
	if e.Error != "permission denied" {
		t.Errorf("expected error text, got %q", e.Error)
	}
	if e.Extra["path"] != "/x.jsonl" {
		t.Errorf("expected extra path, got %v", e.Extra["path"])
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", e.Timestamp, err)
	}
}

func TestTimedEvent(t *testing.T) {
	buf := captureOutput(t)

	New("store").TimedEvent("scan.done", time.Now().Add(-50*time.Millisecond), nil)

	events := decodeLines(t, buf)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Duration < 50 {
		t.Errorf("expected duration >= 50ms, got %d", events[0].Duration)
	}
}

func TestDiscardByDefault(t *testing.T) {
	SetOutput(nil)
	// Must not panic or write anywhere visible
	New("ui").Info("noop", nil)
}
