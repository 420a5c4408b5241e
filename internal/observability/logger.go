package observability

import (
	"io"
	"log/slog"
	"strings"
)

// LogConfig selects the slog handler and minimum level.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// NewLoggerTo returns a logger writing to w. Services log to stdout through
// the shared observability.NewLogger; this variant serves the CLI, whose
// stdout carries the report.
func NewLoggerTo(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLevel accepts the same names as the shared logger.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
