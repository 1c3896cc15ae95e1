// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/config"
	"github.com/lgbarn/fairychess-go/internal/errors"
)

// Setup points the global logger at w and sets the global level. format
// is config.LogConsole for human-readable output or config.LogJSON.
func Setup(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return fmt.Errorf("log level %q: %w", level, errors.ErrInvalidConfig)
	}

	switch format {
	case config.LogConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case config.LogJSON:
	default:
		return fmt.Errorf("log format %q: %w", format, errors.ErrInvalidConfig)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// FromConfig applies the log section of cfg, writing to cfg.LogFile.
func FromConfig(cfg *config.Config) error {
	return Setup(cfg.Log.Level, cfg.Log.Format, cfg.LogFile)
}

// Writer adapts the global logger to an io.Writer for libraries that log
// lines of text, such as request loggers. Each write becomes one event at
// level.
func Writer(level zerolog.Level) io.Writer {
	return writer{level: level}
}

type writer struct {
	level zerolog.Level
}

func (w writer) Write(p []byte) (int, error) {
	n := len(p)
	for n > 0 && (p[n-1] == '\n' || p[n-1] == '\r') {
		n--
	}
	log.WithLevel(w.level).Msg(string(p[:n]))
	return len(p), nil
}
