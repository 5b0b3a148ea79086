// Package logging provides structured logging for the opslevel client using
// zerolog.
//
// Loggers travel in the context. Client calls, sync workers and HTTP handlers
// pull theirs with FromContext and tag it with the service alias or entity
// reference they work on:
//
//	ctx = logging.WithEntityRef(ctx, "component:default/checkout")
//	logging.FromContext(ctx).Warn().Err(err).Msg("Export failed, skipping update")
//
// Code without a context logger falls back to Default, which is configured
// from LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT until the CLI replaces it.
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the default logger, for code that runs before
// any context exists.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
