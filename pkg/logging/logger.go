// Package logging provides structured zerolog logging for fieldeval.
//
// Reconciliation code logs through the logger carried on a context so that
// tenant, run and field identifiers flow into every event:
//
//	ctx = logging.WithTenant(ctx, "acme-01")
//	logging.FromContext(ctx).Info().Int("fields", n).Msg("Reconciling record")
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger

	// Nop discards everything.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = NewLoggerFromConfig(configFromEnv())
}

// Default returns the global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a JSON logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// Warn starts a warning event on the global logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
