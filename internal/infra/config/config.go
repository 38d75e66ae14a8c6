package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"signal_notification_bot/internal/domain/channel"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	SignalFeedURL   string
	LogLevel        string
	Environment     string
	Location        *time.Location // Time zone for send times and cron specs

	CronSpecCounterReset string // Zeroes every channel's counters
	CronSpecFeedMonitor  string // Reports the feed link state

	CommandCooldown time.Duration
	ChannelDefaults channel.Defaults
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	// Empty means channels are kept in memory only.
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.SignalFeedURL = os.Getenv("SIGNAL_FEED_URL")
	if cfg.SignalFeedURL == "" {
		return nil, fmt.Errorf("SIGNAL_FEED_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	cfg.CronSpecCounterReset = os.Getenv("CRON_SPEC_COUNTER_RESET")
	if cfg.CronSpecCounterReset == "" {
		cfg.CronSpecCounterReset = "0 0 * * *" // Default: daily at midnight
	}

	cfg.CronSpecFeedMonitor = os.Getenv("CRON_SPEC_FEED_MONITOR")
	if cfg.CronSpecFeedMonitor == "" {
		cfg.CronSpecFeedMonitor = "*/5 * * * *" // Default: every 5 minutes
	}

	cooldown, err := positiveInt("COMMAND_COOLDOWN_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.CommandCooldown = time.Duration(cooldown) * time.Second

	cfg.ChannelDefaults = channel.DefaultSettings()
	if cfg.ChannelDefaults.RateLimit, err = positiveInt("DEFAULT_RATE_LIMIT", cfg.ChannelDefaults.RateLimit); err != nil {
		return nil, err
	}
	interval, err := positiveInt("DEFAULT_RATE_LIMIT_INTERVAL", int(cfg.ChannelDefaults.RateLimitInterval/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.ChannelDefaults.RateLimitInterval = time.Duration(interval) * time.Second

	if raw := os.Getenv("DEFAULT_SEND_TIMES"); raw != "" {
		times, err := channel.ParseClockTimes(strings.Split(raw, ","))
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_SEND_TIMES: %w", err)
		}
		cfg.ChannelDefaults.SendTimes = times
	}

	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, v)
	}
	return v, nil
}
