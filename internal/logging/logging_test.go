package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected a no-op logger")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tarschat.log")

	logger, err := New(Options{Path: path, Level: "warn"})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn entry missing")
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tarschat.log")
	logger, err := New(Options{Path: path, Level: "error", Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose should enable debug")
	}
}
