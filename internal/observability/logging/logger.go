// Package logging builds the process-wide slog logger. Each binary installs
// one JSON logger at startup tagged with its service name, so log lines from
// the API and the console tool stay distinguishable in aggregation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func NewJSONLogger(service, level string) *slog.Logger {
	return newJSONLogger(os.Stdout, service, level)
}

func newJSONLogger(w io.Writer, service, level string) *slog.Logger {
	lvl, known := parseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		// Source locations are only worth the log volume while debugging.
		AddSource: lvl == slog.LevelDebug,
	})
	logger := slog.New(handler).With("service", service)
	if !known {
		logger.Warn("unknown_log_level", "level", level, "fallback", "info")
	}
	return logger
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
