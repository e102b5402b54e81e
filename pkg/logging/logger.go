// Package logging wraps zerolog for ordersync. Logs go to stderr as console
// output when stderr is a terminal and as JSON lines otherwise, which is what
// timer-triggered runs and containers want.
//
// A pass carries its logger in the context:
//
//	ctx = logging.WithPass(ctx, passID)
//	logging.FromContext(ctx).Debug().Int("rows", n).Msg("Index built")
//
// Code without a context uses the process logger:
//
//	logging.Info().Str("store", "sqlite").Msg("Store opened")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything.
var Nop = zerolog.Nop()

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// Default returns the process logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process logger, and zerolog's global one with it.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the process logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the process logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warn event on the process logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts an error event on the process logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
