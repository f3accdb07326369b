// Package logging constructs the injected structured logger every core
// component accepts instead of reaching for a global. There is no
// package-level default here beyond what log/slog itself provides; callers
// that want one build it explicitly with New.
package logging

import (
	"log/slog"
	"os"

	"github.com/aledsdavies/invariant/config"
)

// New builds a *slog.Logger from a LogConfig: level one of
// debug/info/warn/error, format one of text/json. Writes to stderr, matching
// the convention that a library's logs are diagnostics, not program output.
func New(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func level(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
