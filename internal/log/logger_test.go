package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentRepository).Info("loaded", FieldCount, 3)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=repository") || !strings.Contains(out, "count=3") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithStream("s1", "Alice", "2024-03-10").
		WithError(errors.New("boom")).
		WithOperation(OpAppend)

	got := map[string]any{}
	kv := fields.ToSlice()
	for i := 0; i+1 < len(kv); i += 2 {
		got[kv[i].(string)] = kv[i+1]
	}
	if got[FieldStreamID] != "s1" || got[FieldStreamer] != "Alice" || got[FieldOperation] != OpAppend {
		t.Errorf("unexpected fields: %v", got)
	}
	if got[FieldError] != "boom" {
		t.Errorf("error field = %v", got[FieldError])
	}
}
