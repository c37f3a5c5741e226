package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"TELEGRAM_BOT_TOKEN", "ALLOWED_USER_IDS", "WEBHOOK_MODE", "WEBHOOK_URL",
	"PORT", "LOG_LEVEL", "HISTORY_STORE",
	"CLICKHOUSE_HOST", "CLICKHOUSE_PORT", "CLICKHOUSE_DATABASE",
	"CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, env[key])
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"ALLOWED_USER_IDS":   "123, 456",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.TelegramToken)
	assert.Equal(t, []int64{123, 456}, cfg.AllowedUserIDs)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, HistoryStoreMemory, cfg.HistoryStore)
	assert.Empty(t, cfg.ClickHouseHost)
}

func TestLoadFromEnv_ClickHouse(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"ALLOWED_USER_IDS":   "1",
		"HISTORY_STORE":      "ClickHouse",
		"CLICKHOUSE_HOST":    "db.local",
		"CLICKHOUSE_USE_TLS": "true",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, HistoryStoreClickHouse, cfg.HistoryStore)
	assert.Equal(t, "db.local", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.True(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_Webhook(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"ALLOWED_USER_IDS":   "1",
		"WEBHOOK_MODE":       "true",
		"WEBHOOK_URL":        "https://example.org/",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.WebhookMode)
	assert.Equal(t, "https://example.org", cfg.WebhookURL)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"ALLOWED_USER_IDS": "1"},
		},
		{
			name: "missing allowed users",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "token"},
		},
		{
			name: "invalid user id",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "token", "ALLOWED_USER_IDS": "1,abc"},
		},
		{
			name: "webhook without url",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "token", "ALLOWED_USER_IDS": "1", "WEBHOOK_MODE": "true"},
		},
		{
			name: "unknown history store",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "token", "ALLOWED_USER_IDS": "1", "HISTORY_STORE": "postgres"},
		},
		{
			name: "clickhouse without host",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "token", "ALLOWED_USER_IDS": "1", "HISTORY_STORE": "clickhouse"},
		},
		{
			name: "invalid clickhouse port",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "token", "ALLOWED_USER_IDS": "1",
				"HISTORY_STORE": "clickhouse", "CLICKHOUSE_HOST": "db", "CLICKHOUSE_PORT": "nine",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}
