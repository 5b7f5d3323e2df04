package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	LogLevel      string

	// Defaults applied to newly registered users.
	DefaultTimezone string
	DefaultEvening  string // HH:MM
	DefaultMorning  string // HH:MM
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:        strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		DefaultTimezone: strings.TrimSpace(os.Getenv("DEFAULT_TIMEZONE")),
		DefaultEvening:  strings.TrimSpace(os.Getenv("DEFAULT_EVENING_TIME")),
		DefaultMorning:  strings.TrimSpace(os.Getenv("DEFAULT_MORNING_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "planbot.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "Asia/Shanghai"
	}
	if cfg.DefaultEvening == "" {
		cfg.DefaultEvening = "22:00"
	}
	if cfg.DefaultMorning == "" {
		cfg.DefaultMorning = "08:30"
	}

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return cfg, fmt.Errorf("DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
