// Package config loads engine and server configuration from the
// environment. cmd mains load a .env file first via godotenv, so local
// runs and deployed runs read the same keys.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Storage
	DataBackend string // "sqlite" or "memory"
	SQLitePath  string

	// BudgetChannelID scopes message intake: inbound messages from any
	// other channel are ignored. Empty accepts every channel.
	BudgetChannelID string

	// Engine behavior
	PendingTTL        time.Duration
	KeepIncomeOnClear bool

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		DataBackend:       getEnv("DATA_BACKEND", "sqlite"),
		SQLitePath:        getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		BudgetChannelID:   getEnv("BUDGET_CHANNEL_ID", ""),
		PendingTTL:        getEnvDuration("PENDING_TTL", 5*time.Minute),
		KeepIncomeOnClear: getEnvBool("KEEP_INCOME_ON_CLEAR", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Validate returns an error describing every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if c.SQLitePath != ":memory:" {
			dir := filepath.Dir(c.SQLitePath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						problems = append(problems, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
					}
				}
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be \"memory\" or \"sqlite\"", c.DataBackend))
	}

	if c.PendingTTL <= 0 {
		problems = append(problems, "pending TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
