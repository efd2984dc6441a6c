// Package logging builds the zerolog loggers used across demandcast.
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
	Level      string `yaml:"level" json:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format     string `yaml:"format" json:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" json:"output" default:"stderr" validate:"required"` // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// New creates a logger from cfg. A file output is opened in append mode and
// stays open for the life of the process.
func New(cfg *Config) (zerolog.Logger, error) {
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}
	return NewWithWriter(cfg, output)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg *Config, w io.Writer) (zerolog.Logger, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: timeFormat,
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
