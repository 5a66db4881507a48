// Package logging provides structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const service = "oakmont-voip-crm"

// Init configures the global zerolog logger. The console writer is used
// when env is "dev", JSON otherwise.
func Init(level, env string) zerolog.Logger {
	return InitWriter(os.Stdout, level, env)
}

// InitWriter is Init with an explicit output.
func InitWriter(out io.Writer, level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Logger()

	return log.Logger
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}
