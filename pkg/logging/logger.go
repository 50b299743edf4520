// Package logging provides the structured logger used across logjuicer.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is a logging verbosity level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects how log records are rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger wraps a zerolog.Logger with the field-pair convenience API used
// throughout logjuicer's packages.
type Logger struct {
	logger zerolog.Logger
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var output io.Writer = cfg.Output
	if cfg.Format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()
	return &Logger{logger: zlog.Level(levelOf(cfg.Level))}
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message with alternating key/value fields.
func (l *Logger) Debug(msg string, fields ...interface{}) {
	event := l.logger.Debug()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message with alternating key/value fields.
func (l *Logger) Info(msg string, fields ...interface{}) {
	event := l.logger.Info()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message with alternating key/value fields.
func (l *Logger) Warn(msg string, fields ...interface{}) {
	event := l.logger.Warn()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message with alternating key/value fields.
func (l *Logger) Error(msg string, fields ...interface{}) {
	event := l.logger.Error()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// WithField returns a child Logger with an additional field bound to every
// subsequent event, leaving l itself unchanged.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithFields returns a child Logger with additional fields bound to every
// subsequent event, leaving l itself unchanged.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

func (l *Logger) addFields(event *zerolog.Event, fields ...interface{}) {
	if len(fields)%2 != 0 {
		event.Str("logging_error", "odd number of fields")
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event.Interface(key, fields[i+1])
	}
}

// Nop returns a Logger that discards everything; used as a safe default
// when a caller doesn't care about logging (e.g. library callers of pkg/classifier).
func Nop() *Logger {
	return &Logger{logger: zerolog.New(io.Discard)}
}

// InitGlobalLogger configures the zerolog global logger (github.com/rs/zerolog/log)
// from cfg. It is meant for callers that want the package-level Debug/Info/Warn/Error
// convenience functions below instead of carrying a *Logger value around.
func InitGlobalLogger(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var output io.Writer = cfg.Output
	if cfg.Format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(levelOf(cfg.Level))
}

// Debug logs a debug message using the global logger configured by InitGlobalLogger.
func Debug(msg string) { log.Debug().Msg(msg) }

// Info logs an info message using the global logger configured by InitGlobalLogger.
func Info(msg string) { log.Info().Msg(msg) }

// Warn logs a warning message using the global logger configured by InitGlobalLogger.
func Warn(msg string) { log.Warn().Msg(msg) }

// Error logs an error message using the global logger configured by InitGlobalLogger.
func Error(msg string) { log.Error().Msg(msg) }
