// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger handed to every component.
// There is no package-level logger; callers pass the returned value down.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/pkg/types"
)

// New returns a logger configured by cfg. Output "stderr" writes to
// os.Stderr; anything else writes to os.Stdout.
func New(cfg types.LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter returns a logger configured by cfg that writes to w.
func NewWithWriter(cfg types.LoggingConfig, w io.Writer) zerolog.Logger {
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithSource tags a logger with the source adapter and query it is working on.
func WithSource(logger zerolog.Logger, source, query string) zerolog.Logger {
	return logger.With().Str("source", source).Str("query", query).Logger()
}

// WithPaper tags a logger with a paper's source and external ID.
func WithPaper(logger zerolog.Logger, source, id string) zerolog.Logger {
	return logger.With().Str("source", source).Str("paper_id", id).Logger()
}
