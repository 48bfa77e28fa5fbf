package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentBot)
	l.Info("hello", "k", "v")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=bot") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentWorker).Info("again")
	out = buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=worker") {
		t.Fatalf("unexpected output after WithComponent: %q", out)
	}
}

func TestWithComponent_RescopedLoggerStampsOnce(t *testing.T) {
	var buf bytes.Buffer
	app := newBufferLogger(&buf, ComponentApp)
	l := app.WithComponent(ComponentBot).With("guild", "g1").WithComponent(ComponentDialog)
	l.Info("ready")

	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Fatalf("component stamped %d times: %q", n, out)
	}
	if !strings.Contains(out, "component="+ComponentDialog) {
		t.Fatalf("missing dialog component: %q", out)
	}
	if l.Component() != ComponentDialog {
		t.Fatalf("Component() = %q", l.Component())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("component = %q", l.Component())
	}
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), newBufferLogger(&buf, ComponentReport))
	if l := FromContext(ctx); l.Component() != ComponentReport {
		t.Fatalf("component = %q", l.Component())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentEntry))

	sl.LogEntrySubmitted(context.Background(), OpSubmit, "despesa", "50", "bruno", "form:200")
	out := buf.String()
	for _, want := range []string{"Entry submitted", "entry_type=despesa", "entry_buyer=bruno", "ref=form:200", "operation=submit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), OpFetch, NewFields().WithPeriod(3, 2024))
	out = buf.String()
	for _, want := range []string{"level=ERROR", "error=bad", "month=3", "year=2024"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
