// Package logging builds the zerolog logger shared by the catalog components.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"productcatalog/config"
)

// New creates a logger writing to stderr according to cfg.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

// NewWithWriter creates a logger writing to w. format "console" renders
// human-readable lines; anything else writes JSON. Unknown levels fall back
// to info.
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).With().Timestamp().Str("service", "catalog").Logger().Level(lvl)
}
