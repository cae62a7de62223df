// Package observability provides structured logging and Prometheus metrics.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
	// Service is attached to every record when set.
	Service string
	// Writer overrides Output when set.
	Writer io.Writer
}

// ParseLevel maps a level name to a slog level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger based on configuration.
func NewLogger(config LoggingConfig) *slog.Logger {
	output := config.Writer
	if output == nil {
		switch strings.ToLower(config.Output) {
		case "stderr":
			output = os.Stderr
		case "discard":
			output = io.Discard
		default:
			output = os.Stdout
		}
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(config.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(config.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	logger := slog.New(handler)
	if config.Service != "" {
		logger = logger.With("service", config.Service)
	}
	return logger
}
