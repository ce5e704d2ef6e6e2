// Package logging provides structured JSON logging for the session manager.
//
// The TUI owns the terminal, so events go to a writer chosen at startup
// (usually a file given with --log-file) and are discarded otherwise.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event represents a structured log event
type Event struct {
	Timestamp string         `json:"ts"`
	Level     Level          `json:"level"`
	Component string         `json:"component"`
	Event     string         `json:"event"`
	Session   string         `json:"session,omitempty"`
	Project   string         `json:"project,omitempty"`
	Duration  int64          `json:"duration_ms,omitempty"`
	Error     string         `json:"error,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

var (
	mu     sync.Mutex
	output io.Writer = io.Discard
)

// SetOutput redirects all loggers. Passing nil discards events.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	output = w
}

// Logger provides structured logging
type Logger struct {
	component string
	project   string
	session   string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithProject sets the project context
func (l *Logger) WithProject(project string) *Logger {
	return &Logger{
		component: l.component,
		project:   project,
		session:   l.session,
	}
}

// WithSession sets the session context
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{
		component: l.component,
		project:   l.project,
		session:   id,
	}
}

func (l *Logger) emit(e Event) {
	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	e.Component = l.component
	e.Project = l.project
	e.Session = l.session

	data, _ := json.Marshal(e)

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(output, string(data))
}

func (l *Logger) log(level Level, event string, extra map[string]any, err error) {
	e := Event{
		Level: level,
		Event: event,
		Extra: extra,
	}
	if err != nil {
		e.Error = err.Error()
	}
	l.emit(e)
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]any) {
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]any) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]any, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]any, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]any) {
	l.emit(Event{
		Level:    LevelInfo,
		Event:    event,
		Duration: time.Since(start).Milliseconds(),
		Extra:    extra,
	})
}
