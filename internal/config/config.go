// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/chanikarn/mealrecord/internal/logging"
)

// Config holds everything the process needs at startup.
type Config struct {
	DataDir      string // directory holding the three store files and device state
	ExportDir    string // directory export files are written into
	SynonymsFile string // optional JSON synonym table; empty uses the built-in one
	Logger       LoggerConfig
}

// LoggerConfig configures the global logger.
type LoggerConfig struct {
	Level logging.LogLevel
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.LevelDebug
	case "info":
		return logging.LevelInfo
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (*Config, error) {
	// a missing .env is fine; the environment still applies
	_ = godotenv.Load()

	return &Config{
		DataDir:      getEnvOrDefault("MEALRECORD_DATA_DIR", "data"),
		ExportDir:    getEnvOrDefault("MEALRECORD_EXPORT_DIR", "exports"),
		SynonymsFile: os.Getenv("MEALRECORD_SYNONYMS_FILE"),
		Logger: LoggerConfig{
			Level: parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		},
	}, nil
}
