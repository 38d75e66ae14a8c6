package logger

import (
	"fmt"
	"os"
	"strings"

	"signal_notification_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

const serviceName = "signal_notification_bot"

// Log is the process-wide logger. Init configures it from AppConfig.
var Log = logrus.New()

// Init configures Log. An unknown LOG_LEVEL falls back to info with a warning.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)
	if err := Configure(Log, cfg.LogLevel, cfg.Environment); err != nil {
		Log.WithError(err).Warn("Invalid log level, defaulting to 'info'")
	}
	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

// Configure sets the level and formatter of l. Production and staging log
// JSON, every other environment logs text with full timestamps.
func Configure(l *logrus.Logger, level, environment string) error {
	var levelErr error
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
		levelErr = fmt.Errorf("parse log level %q: %w", level, err)
	}
	l.SetLevel(parsed)

	switch environment {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return levelErr
}

// Base returns the root entry every component logger derives from.
func Base(environment string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"service":     serviceName,
		"environment": environment,
	})
}
