package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/envelope-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	// Blank out anything the surrounding environment might set.
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "BUDGET_CHANNEL_ID", "PENDING_TTL", "KEEP_INCOME_ON_CLEAR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.Equal(t, "./data/budget.db", cfg.SQLitePath)
	assert.Empty(t, cfg.BudgetChannelID)
	assert.Equal(t, 5*time.Minute, cfg.PendingTTL)
	assert.False(t, cfg.KeepIncomeOnClear)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("BUDGET_CHANNEL_ID", "budgeting")
	t.Setenv("PENDING_TTL", "90s")
	t.Setenv("KEEP_INCOME_ON_CLEAR", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.DataBackend)
	assert.Equal(t, "budgeting", cfg.BudgetChannelID)
	assert.Equal(t, 90*time.Second, cfg.PendingTTL)
	assert.True(t, cfg.KeepIncomeOnClear)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PENDING_TTL", "soon")
	t.Setenv("KEEP_INCOME_ON_CLEAR", "maybe")

	cfg := config.Load()

	assert.Equal(t, 5*time.Minute, cfg.PendingTTL)
	assert.False(t, cfg.KeepIncomeOnClear)
}

func TestValidate(t *testing.T) {
	valid := &config.Config{
		Port:        "8080",
		DataBackend: "memory",
		PendingTTL:  time.Minute,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"non-numeric port", func(c *config.Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *config.Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"unknown backend", func(c *config.Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"empty sqlite path", func(c *config.Config) { c.DataBackend = "sqlite"; c.SQLitePath = "" }, "path cannot be empty"},
		{"zero TTL", func(c *config.Config) { c.PendingTTL = 0 }, "TTL must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{Port: "zero", DataBackend: "flat-file", PendingTTL: -1}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "invalid data backend")
	assert.Contains(t, err.Error(), "TTL must be positive")
}
