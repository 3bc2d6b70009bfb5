package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON slog logger on stdout. Every record carries the service
// name and environment. An unknown level falls back to info.
func New(level, service, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, level).With(
		slog.String("service", service),
		slog.String("env", env),
	)
}

// NewWithWriter is New without the service attributes, writing to w.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
