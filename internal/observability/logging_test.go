package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"":        zapcore.InfoLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLogger_Levels(t *testing.T) {
	l := NewLogger("warn", "json")
	if l.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !l.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn should be enabled")
	}
	if !NewLogger("debug", "console").Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled")
	}
}

func TestEnvLogLevel(t *testing.T) {
	t.Setenv("IMAGE_WATCHER_LOG_LEVEL", "")
	if got := EnvLogLevel("info"); got != "info" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("IMAGE_WATCHER_LOG_LEVEL", "debug")
	if got := EnvLogLevel("info"); got != "debug" {
		t.Fatalf("got %q", got)
	}
}
