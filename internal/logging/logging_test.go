package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ayra.log")
	if err := Init(Config{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		_ = Init(DefaultConfig())
	})

	logger := Component("test")
	logger.Info().Str("scenario", "healthcare").Msg("hello")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"component":"test"`, `"scenario":"healthcare"`, `"message":"hello"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %q", want, line)
		}
	}
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ayra.log")
	if err := Init(Config{Level: "chatty", Format: "json", Output: path, Rotation: false}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		_ = Init(DefaultConfig())
	})

	logger := Component("test")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	_ = Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", data)
	}
	if !strings.Contains(string(data), "shown") {
		t.Fatalf("info line missing: %q", data)
	}
}
