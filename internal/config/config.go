package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Content locations
	TreeDir string
	DataDir string

	// Auth
	APIKey string

	// Feature flags
	EnableHistory        bool
	EnableAnalytics      bool
	EnableRiskScoring    bool
	EnableBackNavigation bool
	EnableCSVExport      bool

	// History
	MaxHistoryEntries int

	// Sessions
	SessionTimeout       time.Duration
	SessionSweepInterval time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		TreeDir: envOr("TREE_DIR", "logic"),
		DataDir: envOr("DATA_DIR", "data"),

		APIKey: os.Getenv("DECISIONGUIDE_API_KEY"),

		EnableHistory:        envBool("ENABLE_HISTORY", true),
		EnableAnalytics:      envBool("ENABLE_ANALYTICS", false),
		EnableRiskScoring:    envBool("ENABLE_RISK_SCORING", true),
		EnableBackNavigation: envBool("ENABLE_BACK_NAVIGATION", true),
		EnableCSVExport:      envBool("ENABLE_CSV_EXPORT", true),

		MaxHistoryEntries: envInt("MAX_HISTORY_ENTRIES", 100),

		SessionTimeout:       envDuration("SESSION_TIMEOUT", 1*time.Hour),
		SessionSweepInterval: envDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}

	if cfg.MaxHistoryEntries <= 0 {
		cfg.MaxHistoryEntries = 100
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 1 * time.Hour
	}
	if cfg.SessionSweepInterval <= 0 {
		cfg.SessionSweepInterval = 5 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DECISIONGUIDE_API_KEY is required")
	}
	if c.TreeDir == "" {
		return fmt.Errorf("TREE_DIR is required")
	}
	return nil
}

// HistoryPath is the SQLite database location under the data directory.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "decision_history.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
