// Package logging builds the zerolog logger shared by the CLI, the HTTP server
// and the market data client.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level, encoding and destination of log output.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	TimeFormat string
}

// New creates a logger from cfg. Empty fields fall back to info / json / stderr.
func New(cfg Config) (zerolog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	return build(output, level, cfg), nil
}

// NewWriter creates a logger that writes to w. Used by tests.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return build(w, level, Config{Format: "json"})
}

func build(output io.Writer, level zerolog.Level, cfg Config) zerolog.Logger {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}
