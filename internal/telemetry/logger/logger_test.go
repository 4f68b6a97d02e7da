package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { SetLevel("info") })
	return l, &buf
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(t, "debug", "json")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "unit", "/user/allocator")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log output: %v", err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v, want %v", entry["msg"], "test message")
			}
			if entry["unit"] != "/user/allocator" {
				t.Errorf("unit = %v, want %v", entry["unit"], "/user/allocator")
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.With("service", "id-generator").Info("bound")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["service"] != "id-generator" {
		t.Errorf("service = %v, want %v", entry["service"], "id-generator")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "error", "json")

	l.Info("filtered")
	if buf.Len() != 0 {
		t.Errorf("info logged at error level: %s", buf.String())
	}

	SetLevel("debug")
	l.Info("visible")
	if buf.Len() == 0 {
		t.Error("info not logged after SetLevel(debug)")
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want %q", got, "debug")
	}
}

func TestParseLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"ERROR", "error"},
		{"invalid", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			SetLevel(tt.input)
			if got := GetLevel(); got != tt.expected {
				t.Errorf("SetLevel(%q): GetLevel() = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	prev := Default()
	l, buf := newBufferLogger(t, "debug", "json")
	SetDefault(l)
	t.Cleanup(func() { SetDefault(prev) })

	for name, fn := range map[string]func(string, ...any){
		"Debug": Debug, "Info": Info, "Warn": Warn, "Error": Error,
	} {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			fn("test message")
			if buf.Len() == 0 {
				t.Errorf("%s() produced no output", name)
			}
		})
	}
}

func TestLogger_TextFormat(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "text")

	l.WithContext(context.Background()).Info("test message", "component", "announcer")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("output missing message: %s", output)
	}
	if !strings.Contains(output, "component=announcer") {
		t.Errorf("output missing attribute: %s", output)
	}
}

func TestSlog_SharesHandler(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.Slog().Info("from adapter")
	if !strings.Contains(buf.String(), "from adapter") {
		t.Errorf("slog output missing: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l == nil {
		t.Fatal("Discard() returned nil")
	}
	l.Error("dropped")
}
