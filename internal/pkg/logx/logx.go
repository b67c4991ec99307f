/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the process-wide logger, picks the output format (console or JSON)
from the environment, and offers key/value helpers for the Info, Warn, Error and
Fatal levels plus per-component child loggers.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger initializes the global zerolog instance.
// Development: Debug level with a colored ConsoleWriter on stderr.
// Production: Info level, JSON lines on stdout.
// All entries carry a Unix timestamp and caller information.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    false,
			TimeFormat: time.RFC3339,
		})
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns a pointer to the global zerolog.Logger instance.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// checkFields drops an odd-length key/value list instead of letting zerolog panic.
func checkFields(level zerolog.Level, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level.String()).
			Msgf("logx received odd number of fields: %v. Fields ignored.", fields)
		return nil
	}
	return fields
}

// emit finishes e for an exported helper so the caller of that helper is reported.
func emit(e *zerolog.Event, level zerolog.Level, msg string, fields []any) {
	e.Fields(checkFields(level, fields)).
		CallerSkipFrame(2).
		Msg(msg)
}

// Debug records a message at the Debug level with optional key/value fields.
func Debug(msg string, fields ...any) {
	emit(Logger().Debug(), zerolog.DebugLevel, msg, fields)
}

// Info records a message at the Info level with optional key/value fields.
func Info(msg string, fields ...any) {
	emit(Logger().Info(), zerolog.InfoLevel, msg, fields)
}

// Warn records a message at the Warn level with optional key/value fields.
func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), zerolog.WarnLevel, msg, fields)
}

// Error records err and a message at the Error level.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error().Err(err), zerolog.ErrorLevel, msg, fields)
}

// Fatal records err at the Fatal level and terminates the process with exit code 1.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal().Err(err), zerolog.FatalLevel, msg, fields)
}
