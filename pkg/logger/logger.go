package logger

import (
	"log/slog"
	"os"
)

// Log defaults to a no-frills handler so packages can log before Init runs
// (and in tests that never call it).
var Log = slog.Default()

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
