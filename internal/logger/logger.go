// File: internal/logger/logger.go
package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
)

const debugEnvVar = "COSCTL_DEBUG"

// Level is shared by every logger built here so --debug can raise verbosity after startup
var Level = new(slog.LevelVar)

func NewLogger() *slog.Logger {
	return newLogger(os.Stderr)
}

func newLogger(w io.Writer) *slog.Logger {
	if enabled, err := strconv.ParseBool(os.Getenv(debugEnvVar)); err == nil && enabled {
		Level.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{
		Level: Level,
	}

	// Logs go to stderr; stdout is reserved for command output
	handler := slog.NewTextHandler(w, opts)

	logger := slog.New(handler)

	slog.SetDefault(logger)
	return logger
}

// SetDebug switches all loggers between Info and Debug level
func SetDebug(enabled bool) {
	if enabled {
		Level.Set(slog.LevelDebug)
		return
	}
	Level.Set(slog.LevelInfo)
}
