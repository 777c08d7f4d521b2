package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface the rest of the tool depends on
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogrusLogger is the logrus-backed Logger used by the CLI
type LogrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrus creates a logger with the given level and format. Unknown
// levels fall back to info; any format other than json means text.
func NewLogrus(level, format string) Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LogrusLogger{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

func (l *LogrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *LogrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *LogrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *LogrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithField(key, value),
	}
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithFields(fields),
	}
}

// NopLogger discards everything. Tests use it to keep output quiet.
type NopLogger struct{}

// NewNop creates a logger that drops all output
func NewNop() Logger {
	return NopLogger{}
}

func (NopLogger) Debug(msg string)            {}
func (NopLogger) Info(msg string)             {}
func (NopLogger) Warn(msg string)             {}
func (NopLogger) Error(msg string, err error) {}

func (NopLogger) WithField(key string, value interface{}) Logger {
	return NopLogger{}
}

func (NopLogger) WithFields(fields map[string]interface{}) Logger {
	return NopLogger{}
}
