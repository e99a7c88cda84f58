package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
// All of it is static: values are read once at startup and passed into
// constructors, never re-read mid-run.
type Config struct {
	BotToken  string `envconfig:"BOT_TOKEN" required:"true"`
	EMSAPIURL string `envconfig:"EMS_API_URL" default:"https://ems-api.example.com"`
	EMSAPIKey string `envconfig:"EMS_API_KEY"`

	DBPath   string `envconfig:"DATABASE_PATH" default:"./data/bot.db"`
	Timezone string `envconfig:"TIMEZONE" default:"Europe/Kyiv"`

	// AdminIDs see the push/panel/keys admin menu.
	AdminIDs []int64 `envconfig:"ADMIN_IDS"`

	// FetchTimes are the daily roster sync times (HH:MM, bot timezone).
	// Each run fully replaces the shifts table.
	FetchTimes []string `envconfig:"FETCH_TIMES" default:"06:00,10:00,14:00,18:00"`

	// TickIntervalSec must stay under 60s or the exact-minute match of the
	// notification tick can skip a user's minute entirely.
	TickIntervalSec int `envconfig:"TICK_INTERVAL_SEC" default:"30"`

	// CutoffHour: at/after this local hour a reminder concerns tomorrow's shift.
	CutoffHour int `envconfig:"NOTIFY_CUTOFF_HOUR" default:"18"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTPAddr serves /healthz and /metrics.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads .env (best effort) and the environment into Config, and
// validates the schedule settings.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if len(c.FetchTimes) == 0 {
		return fmt.Errorf("FETCH_TIMES must not be empty")
	}
	for _, t := range c.FetchTimes {
		if _, _, err := domain.ParseClock(t); err != nil {
			return fmt.Errorf("FETCH_TIMES entry %q: %w", t, err)
		}
	}
	if c.TickIntervalSec < 1 || c.TickIntervalSec > 59 {
		return fmt.Errorf("TICK_INTERVAL_SEC must be within 1..59, got %d", c.TickIntervalSec)
	}
	if c.CutoffHour < 0 || c.CutoffHour > 23 {
		return fmt.Errorf("NOTIFY_CUTOFF_HOUR must be within 0..23, got %d", c.CutoffHour)
	}
	return nil
}

// Location returns the configured IANA location. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TickInterval returns the notification tick interval as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSec) * time.Second
}

// IsAdmin reports whether the given Telegram id is configured as an admin.
func (c Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
