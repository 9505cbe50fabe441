package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key NewFromEnv reads so the host environment can't leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEAL_CATALOG_CONFIG", "MEALDB_API_URL", "MEALDB_TIMEOUT", "DATABASE_PATH", "PORT",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOW_USER_IDS", "TELEGRAM_ADMIN_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultMealDBURL, cfg.MealDBURL)
		assert.Equal(t, DefaultMealDBTimeout, cfg.MealDBTimeout)
		assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Empty(t, cfg.TelegramAllowedUserIDs)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEALDB_API_URL", "http://mealdb.test/api/")
		t.Setenv("MEALDB_TIMEOUT", "3s")
		t.Setenv("DATABASE_PATH", "/tmp/x.db")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "11, 22,")
		t.Setenv("TELEGRAM_ADMIN_ID", "11")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://mealdb.test/api", cfg.MealDBURL)
		assert.Equal(t, 3*time.Second, cfg.MealDBTimeout)
		assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
		assert.Equal(t, []int64{11, 22}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(11), cfg.AdminTelegramID)
	})

	t.Run("InvalidTimeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEALDB_TIMEOUT", "soon")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid MEALDB_TIMEOUT")
	})

	t.Run("InvalidUserIDs", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "1,abc")

		_, err := NewFromEnv()
		require.Error(t, err)
	})

	t.Run("YAMLFileThenEnv", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "mealdb_url: http://from-file.test\nmealdb_timeout: 5s\nport: \"9000\"\ntelegram_allowed_user_ids: [7]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		t.Setenv("MEAL_CATALOG_CONFIG", path)
		t.Setenv("PORT", "9100")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://from-file.test", cfg.MealDBURL)
		assert.Equal(t, 5*time.Second, cfg.MealDBTimeout)
		assert.Equal(t, "9100", cfg.Port)
		assert.Equal(t, []int64{7}, cfg.TelegramAllowedUserIDs)
	})

	t.Run("MissingYAMLFile", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_CATALOG_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := NewFromEnv()
		require.Error(t, err)
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireTelegram()
	require.Error(t, err)
	assert.Equal(t, "TELEGRAM_BOT_TOKEN environment variable not set", err.Error())

	cfg.TelegramBotToken = "token"
	err = cfg.RequireTelegram()
	require.Error(t, err)
	assert.Equal(t, "TELEGRAM_WEBHOOK_URL environment variable not set", err.Error())

	cfg.TelegramWebhookURL = "https://bot.test/webhook"
	assert.NoError(t, cfg.RequireTelegram())
}
