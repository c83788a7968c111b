package app

import (
	"io"
	"log/slog"
	"strings"
)

// defaultLogLevel matches the CLI's --log-level default so an App built
// without the CLI is as quiet as one built with it.
const defaultLogLevel = slog.LevelWarn

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// parseLogLevel resolves a level name; unknown or empty names yield
// defaultLogLevel.
func parseLogLevel(name string) slog.Level {
	if level, ok := logLevels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return defaultLogLevel
}

// newLogger creates a slog.Logger for the calculation log. It never touches
// slog's global default, so tests can run several apps side by side.
func newLogger(levelName, format string, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(levelName)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
