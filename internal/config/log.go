package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// Log output formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error
	Level string `yaml:"level"`

	// Format is console or json
	Format string `yaml:"format"`
}

// NewLogConfig creates a LogConfig with default values.
func NewLogConfig() *LogConfig {
	return &LogConfig{
		Level:  zerolog.InfoLevel.String(),
		Format: LogConsole,
	}
}

// Validate checks the level name and format.
func (l *LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(l.Level); err != nil || l.Level == "" {
		return fmt.Errorf("log level %q: %w", l.Level, errors.ErrInvalidConfig)
	}
	if l.Format != LogConsole && l.Format != LogJSON {
		return fmt.Errorf("log format %q: %w", l.Format, errors.ErrInvalidConfig)
	}
	return nil
}
