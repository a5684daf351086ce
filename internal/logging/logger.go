package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// WithPersistence adds the PostgreSQL handler next to stdout.
func WithPersistence(pg *PGHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), pg)))
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
