package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output when LOG_FORMAT is
// "json", human-readable text otherwise.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
