package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
)

func TestLoggerWritesToBuffer(t *testing.T) {
	logger := NewLoggerWithOutput(LevelInfo, nil)

	logger.Info("started", map[string]string{"pid": "1"})

	entries := logger.Buffer().List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != LevelInfo {
		t.Fatalf("expected info level, got %q", entry.Level)
	}
	if entry.Message != "started" {
		t.Fatalf("expected message started, got %q", entry.Message)
	}
	if entry.Context["pid"] != "1" {
		t.Fatalf("expected context pid=1, got %v", entry.Context)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	logger := NewLoggerWithOutput(LevelWarning, nil)

	logger.Info("info", nil)
	logger.Warn("warn", nil)

	entries := logger.Buffer().List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != LevelWarning {
		t.Fatalf("expected warning level, got %q", entries[0].Level)
	}
}

func TestLoggerSinkLevelOverride(t *testing.T) {
	var console bytes.Buffer
	var file bytes.Buffer
	logger := New(Options{
		Level: LevelWarning,
		Sinks: []Sink{
			{Writer: &console, Format: FormatLogfmt},
			{Writer: &file, Format: FormatLogfmt, MinLevel: LevelDebug},
		},
	})

	logger.Debug("kill failed", nil)
	logger.Warn("watch error", nil)

	if strings.Contains(console.String(), "kill failed") {
		t.Fatalf("expected console to skip debug entry, got %q", console.String())
	}
	if !strings.Contains(console.String(), "watch error") {
		t.Fatalf("expected console to contain warning, got %q", console.String())
	}
	if !strings.Contains(file.String(), "kill failed") || !strings.Contains(file.String(), "watch error") {
		t.Fatalf("expected file sink to contain both entries, got %q", file.String())
	}
	if got := len(logger.Buffer().List()); got != 1 {
		t.Fatalf("expected buffer to follow logger level, got %d entries", got)
	}
}

func TestLoggerWithMergesFields(t *testing.T) {
	var out bytes.Buffer
	logger := NewLoggerWithOutput(LevelInfo, &out).Component("controller")

	logger.Info("--- Success ---", map[string]string{"status": "exit status 0"})

	line := out.String()
	if !strings.Contains(line, `msg="--- Success ---"`) {
		t.Fatalf("expected quoted message, got %q", line)
	}
	if !strings.Contains(line, `saw.component="controller"`) {
		t.Fatalf("expected component field, got %q", line)
	}
	if !strings.Contains(line, `status="exit status 0"`) {
		t.Fatalf("expected status field, got %q", line)
	}
}

func TestTextFormatHidesInternalFields(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	var out bytes.Buffer
	logger := New(Options{Level: LevelDebug, Sinks: []Sink{{Writer: &out}}}).Component("controller")
	logger.Info("--- Failed (exit status 1) ---", map[string]string{FieldOutcome: OutcomeFailure, "pid": "7"})
	logger.Debug("command started", map[string]string{"pid": "8"})

	want := "--- Failed (exit status 1) ---\ncommand started pid=8\n"
	if got := out.String(); got != want {
		t.Fatalf("unexpected text lines %q", got)
	}
}

func TestLoggerBufferIsSafeForConcurrentUse(t *testing.T) {
	logger := NewLoggerWithOutput(LevelInfo, nil)

	const total = 50
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Component("watcher").Info("message", nil)
		}()
	}
	wg.Wait()

	if got := len(logger.Buffer().List()); got != total {
		t.Fatalf("expected %d entries, got %d", total, got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "TEXT": FormatText, "logfmt": FormatLogfmt}
	for raw, want := range cases {
		got, ok := ParseFormat(raw)
		if !ok || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := ParseFormat("json"); ok {
		t.Fatalf("expected json to be rejected")
	}
}
