package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentLoader})

	logger.Info("hello")
	if got := strings.Count(buf.String(), "component=chart_loader"); got != 1 {
		t.Fatalf("expected component once, got %d in %q", got, buf.String())
	}

	buf.Reset()
	logger.WithComponent(ComponentRender).Info("switched")
	out := buf.String()
	if !strings.Contains(out, "component=render") || strings.Contains(out, "chart_loader") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Format: "json"})

	logger.LogError(context.Background(), "boom", errors.New("refused"), OpFetch, NewFields().WithEndpoint("http://x"))
	out := buf.String()
	for _, want := range []string{`"level":"ERROR"`, `"error":"refused"`, `"operation":"fetch"`, `"endpoint":"http://x"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
	l := Discard()
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Fatal("expected stored logger")
	}
}
