package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"countdowns/internal/clock"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken      string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	OwnerID            int64  `envconfig:"TELEGRAM_OWNER_ID" default:"0"`
	DatabaseURL        string `envconfig:"DATABASE_URL" default:"countdowns.db"`
	// Timezone places timed events and "now". All-day events are stored as
	// a calendar date and keep it when the timezone changes.
	Timezone           string `envconfig:"TIMEZONE" default:"Local"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty          bool   `envconfig:"LOG_PRETTY" default:"false"`
	WidgetRefresh      string `envconfig:"WIDGET_REFRESH" default:"0 0 * * *"`
	WidgetEntries      int    `envconfig:"WIDGET_ENTRIES" default:"7"`
	DefaultDisplayMode string `envconfig:"DEFAULT_DISPLAY_MODE" default:"Days"`

	location *time.Location
}

// Load reads an optional .env file followed by environment variables.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		cfg.DatabaseURL = "countdowns.db"
	}
	if cfg.WidgetEntries <= 0 {
		cfg.WidgetEntries = 7
	}

	loc, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc
	return cfg, nil
}

// Location returns the calendar location events are entered and shown in.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// DisplayMode returns the mode used before the user picks one.
func (c Config) DisplayMode() clock.Mode {
	return clock.ParseMode(c.DefaultDisplayMode)
}
