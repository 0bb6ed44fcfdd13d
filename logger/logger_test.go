package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitWritesToLogFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "conduit.log")
	log, err := Init("info", path, false)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	log.Info().Msg("hello from test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("expected log file to contain the message, got %q", string(data))
	}
}

func TestInitConfiguredLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, err := Init("error", "", false)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if log.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %s", log.GetLevel())
	}
}

func TestInitEnvOverridesConfiguredLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log, err := Init("error", "", false)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level from LOG_LEVEL, got %s", log.GetLevel())
	}
}

func TestParseLogLevelDefaultsToInfo(t *testing.T) {
	if lvl := parseLogLevel("nonsense"); lvl != zerolog.InfoLevel {
		t.Errorf("expected info for unknown level, got %s", lvl)
	}
	if lvl := parseLogLevel(""); lvl != zerolog.InfoLevel {
		t.Errorf("expected info for empty level, got %s", lvl)
	}
}
