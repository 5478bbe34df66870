package config

import (
	"testing"

	"github.com/chanikarn/mealrecord/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEALRECORD_DATA_DIR", "")
	t.Setenv("MEALRECORD_EXPORT_DIR", "")
	t.Setenv("MEALRECORD_SYNONYMS_FILE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.ExportDir != "exports" {
		t.Errorf("ExportDir = %q, want exports", cfg.ExportDir)
	}
	if cfg.SynonymsFile != "" {
		t.Errorf("SynonymsFile = %q, want empty", cfg.SynonymsFile)
	}
	if cfg.Logger.Level != logging.LevelInfo {
		t.Errorf("Logger.Level = %v, want info", cfg.Logger.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEALRECORD_DATA_DIR", "/tmp/meals")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "/tmp/meals" {
		t.Errorf("DataDir = %q, want /tmp/meals", cfg.DataDir)
	}
	if cfg.Logger.Level != logging.LevelDebug {
		t.Errorf("Logger.Level = %v, want debug", cfg.Logger.Level)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logging.LogLevel
	}{
		{"debug", logging.LevelDebug},
		{"WARN", logging.LevelWarn},
		{"warning", logging.LevelWarn},
		{"error", logging.LevelError},
		{"bogus", logging.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
