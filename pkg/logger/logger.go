package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level represents logging level
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config holds logger configuration
type Config struct {
	Level   Level
	Pretty  bool
	Output  io.Writer
	Service string
}

// Logger wraps zerolog.Logger
type Logger struct {
	ZL zerolog.Logger
}

// New creates a logger. With Pretty set it writes console output, otherwise
// structured JSON.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: InfoLevel, Output: os.Stdout}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).Level(cfg.Level).With().Timestamp()
	if cfg.Service != "" {
		zl = zl.Str("service", cfg.Service)
	}

	return &Logger{ZL: zl.Logger()}
}

// WithFields returns a child logger with the fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{ZL: l.ZL.With().Fields(fields).Logger()}
}

func (l *Logger) Info(msg string) {
	l.ZL.Info().Msg(msg)
}

func (l *Logger) Error(err error, msg string) {
	l.ZL.Error().Err(err).Msg(msg)
}

func (l *Logger) Fatal(err error, msg string) {
	l.ZL.Fatal().Err(err).Msg(msg)
}

func (l *Logger) Debug(msg string) {
	l.ZL.Debug().Msg(msg)
}
