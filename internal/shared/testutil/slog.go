// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
)

// LogRecord is a captured log record with its attributes flattened,
// including those added with Logger.With.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records every log record for later assertions. Loggers
// derived with With share the parent's records.
type CaptureHandler struct {
	sink  *logSink
	attrs []slog.Attr
	t     *testing.T
}

// NewTestLogger returns a logger whose records are captured by the
// returned handler and echoed to t.Log.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{sink: &logSink{}, t: t}
	return slog.New(h), h
}

// Enabled implements slog.Handler. Every level is captured.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Resolve().Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.sink.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CaptureHandler{sink: h.sink, attrs: append(slices.Clip(h.attrs), attrs...), t: h.t}
}

// WithGroup implements slog.Handler. Groups are ignored; attribute keys
// stay flat.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of the captured records.
func (h *CaptureHandler) Records() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return slices.Clone(h.sink.records)
}

// Find returns the records at level whose message contains msg.
func (h *CaptureHandler) Find(level slog.Level, msg string) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether any captured record, message or attribute value
// contains s.
func (h *CaptureHandler) Contains(s string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, s) {
			return true
		}
		for _, v := range r.Attrs {
			if str, ok := v.(string); ok && strings.Contains(str, s) {
				return true
			}
		}
	}
	return false
}

// AssertLogged fails t unless a record at level with a message containing
// msg carries every key/value pair in attrs.
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, msg string, attrs map[string]any) {
	t.Helper()

	for _, r := range h.Find(level, msg) {
		if hasAll(r.Attrs, attrs) {
			return
		}
	}

	t.Errorf("no %s record %q with attributes %v", level, msg, attrs)
	for _, r := range h.Records() {
		t.Logf("  - [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}

func hasAll(got, want map[string]any) bool {
	for k, v := range want {
		if g, ok := got[k]; !ok || g != v {
			return false
		}
	}
	return true
}
