package cmd

import (
	"io"
	"log/slog"

	"github.com/abhisek/studyforge/internal/config"
)

// setupLogger configures the default logger from the log config. --debug
// forces debug level with source locations.
func setupLogger(w io.Writer, cfg config.LogConfig, debugMode bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if debugMode {
		logLevel = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: debugMode,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
