package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMealDBURL     = "https://www.themealdb.com/api/json/v1/1"
	DefaultMealDBTimeout = 15 * time.Second
	DefaultDatabasePath  = "data/meal-catalog.db"
	DefaultPort          = "8080"
)

// Config holds the configuration for the application.
type Config struct {
	MealDBURL     string        `yaml:"mealdb_url"`
	MealDBTimeout time.Duration `yaml:"mealdb_timeout"`
	DatabasePath  string        `yaml:"database_path"`
	Port          string        `yaml:"port"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `yaml:"telegram_admin_id"`
}

// NewFromEnv creates a new Config object from environment variables.
// If MEAL_CATALOG_CONFIG points at a YAML file it is loaded first and the
// environment overrides whatever it sets.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		MealDBURL:     DefaultMealDBURL,
		MealDBTimeout: DefaultMealDBTimeout,
		DatabasePath:  DefaultDatabasePath,
		Port:          DefaultPort,
	}

	if path := os.Getenv("MEAL_CATALOG_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("MEALDB_API_URL"); v != "" {
		cfg.MealDBURL = v
	}
	cfg.MealDBURL = strings.TrimRight(cfg.MealDBURL, "/")

	if v := os.Getenv("MEALDB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MEALDB_TIMEOUT %q: %w", v, err)
		}
		cfg.MealDBTimeout = d
	}

	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	// Telegram Config (Optional for CLI, required for Bot)
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_WEBHOOK_URL"); v != "" {
		cfg.TelegramWebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_ALLOW_USER_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_IDS: %w", err)
		}
		cfg.TelegramAllowedUserIDs = ids
	}
	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireTelegram checks the settings only the bot needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
