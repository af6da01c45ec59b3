package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

type Config struct {
	Level      Level
	TimeFormat string
	Output     io.Writer
}

// Logger wraps zerolog with a keyvals-style API for the worker side of
// the codebase; HTTP handlers use the zerolog global directly.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{
			Level:      InfoLevel,
			TimeFormat: time.RFC3339,
			Output:     os.Stdout,
		}
	}

	zl := zerolog.New(cfg.Output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// WithFields returns a child logger carrying the fields on every line.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.zl.Debug().Fields(keyvals).Msg(msg)
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.zl.Info().Fields(keyvals).Msg(msg)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.zl.Warn().Fields(keyvals).Msg(msg)
}

func (l *Logger) Error(err error, msg string, keyvals ...interface{}) {
	l.zl.Error().Err(err).Fields(keyvals).Msg(msg)
}

func (l *Logger) Fatal(err error, msg string, keyvals ...interface{}) {
	l.zl.Fatal().Err(err).Fields(keyvals).Msg(msg)
}
