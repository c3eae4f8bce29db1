package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	// Default is the process logger built by Init. Only main uses it;
	// components receive their *Logger explicitly.
	Default *Logger
)

// New creates a logger that writes human-readable lines to out at the
// given level.
func New(level zerolog.Level, out io.Writer) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    out != os.Stdout,
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{logger: logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Init initializes the default logger from the environment
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339

	Default = New(level, os.Stdout)

	Default.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("APP_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	newLogger := l.logger.With()
	for k, v := range fields {
		newLogger = newLogger.Interface(k, v)
	}
	return &Logger{logger: newLogger.Logger()}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal returns a fatal event
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// ForCollector creates a logger for the listing collector
func (l *Logger) ForCollector(tag string) *Logger {
	return l.WithFields(Fields{"component": "collector", "tag": tag})
}

// ForClassifier creates a logger for the item classifier
func (l *Logger) ForClassifier() *Logger {
	return l.WithField("component", "classifier")
}

// ForWorker creates a logger for the worker
func (l *Logger) ForWorker() *Logger {
	return l.WithField("component", "worker")
}

// ForPublisher creates a logger for the publisher
func (l *Logger) ForPublisher() *Logger {
	return l.WithField("component", "publisher")
}

// ForCache creates a logger for the cache
func (l *Logger) ForCache() *Logger {
	return l.WithField("component", "cache")
}

// ForBrowser creates a logger for the browser driver
func (l *Logger) ForBrowser() *Logger {
	return l.WithField("component", "browser")
}
