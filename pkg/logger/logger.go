package logger

import (
	"log/slog"
	"os"
)

// Log is safe to use before Init; Init switches it to debug level at boot.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

func Init() {
	// JSON handler for production-ready logging
	Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
