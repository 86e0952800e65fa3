// Package logger provides component-tagged structured logging for the
// application, backed by zerolog.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging contract used by all components.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warn(component, message string, fields map[string]interface{})
	Error(component, message string, fields map[string]interface{})
}

// Zerolog adapts a zerolog.Logger to the Logger interface.
type Zerolog struct {
	logger zerolog.Logger
}

// New creates a structured logger writing to the given writer.
func New(writer io.Writer, level zerolog.Level) *Zerolog {
	l := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &Zerolog{logger: l}
}

// NewConsole creates a human-readable console logger on stderr. The level
// is taken from the LOG_LEVEL environment variable (debug/info/warn/error),
// defaulting to info.
func NewConsole() *Zerolog {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, levelFromEnv())
}

func levelFromEnv() zerolog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (z *Zerolog) Debug(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Debug(), component, message, fields)
}

func (z *Zerolog) Info(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Info(), component, message, fields)
}

func (z *Zerolog) Warn(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Warn(), component, message, fields)
}

func (z *Zerolog) Error(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Error(), component, message, fields)
}

func (z *Zerolog) emit(event *zerolog.Event, component, message string, fields map[string]interface{}) {
	event = event.Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Zerolog {
	return &Zerolog{logger: zerolog.Nop()}
}
