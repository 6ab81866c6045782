// Package log configures structured logging for the whole application on
// top of log/slog, with a colored tint handler for terminals and a plain
// JSON handler for everything else.
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: text, json (default: text)
package log

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger at the level and format taken from the
// environment.
func Setup() {
	SetupWithLevel(levelFromEnv())
}

// SetupWithLevel installs the default logger at an explicit level.
func SetupWithLevel(level slog.Level) {
	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	slog.SetDefault(slog.New(handler))
}

// WithComponent returns the default logger tagged with a component field.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With(FieldComponent, component)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
