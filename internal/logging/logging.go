// Package logging builds the zerolog logger shared by commands and carried
// through request contexts.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	DefaultLevel = "warn"
)

// Config selects the log level and encoding.
type Config struct {
	Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=console json"`
}

func (c *Config) setDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
}

// New returns a logger writing to w. Console output is uncoloured so it stays
// readable when redirected.
func New(w io.Writer, cfg Config) (zerolog.Logger, error) {
	cfg.setDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation error: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	writer := w
	if cfg.Format == FormatConsole {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
