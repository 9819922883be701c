package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	for _, format := range []string{"human", "text", "json"} {
		var buf bytes.Buffer
		l, err := NewWithWriter(format, slog.LevelInfo, &buf)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		l.Info(context.Background(), "hello", "k", "v")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("%s: output %q lacks message", format, buf.String())
		}
		if format == "human" && strings.Contains(buf.String(), "time=") {
			t.Errorf("human output should omit time: %q", buf.String())
		}
	}
	if _, err := NewWithWriter("xml", slog.LevelInfo, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSpan(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWithWriter("text", slog.LevelInfo, &buf)
	ctx := WithLogger(context.Background(), l)

	_, end := Span(ctx, "CMD", "deployment.run", "dep-1")
	end(nil)
	_, end = Span(ctx, "WRK", "flow-run.submit", "run-1")
	end(errors.New("this error message is certainly longer than thirty-two bytes"))

	out := buf.String()
	for _, want := range []string{
		"CMD:deployment.run/S", "CMD:deployment.run/EOK", "resourceId=dep-1",
		"WRK:flow-run.submit/EFAIL", "this error message is certainly ...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
