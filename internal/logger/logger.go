package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Fields carries structured context for a log line
type Fields = map[string]interface{}

// Init initializes the logger with the given level and format ("text" or "json")
func Init(level, format string) error {
	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	return nil
}

// SetOutput redirects log output, mostly for tests and the CLI
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Debug logs a debug message
func Debug(msg string, fields ...Fields) {
	entry(fields).Debug(msg)
}

// Info logs an info message
func Info(msg string, fields ...Fields) {
	entry(fields).Info(msg)
}

// Warn logs a warning with the error that caused it
func Warn(msg string, err error, fields ...Fields) {
	entry(fields).WithError(err).Warn(msg)
}

// Error logs an error message
func Error(msg string, err error, fields ...Fields) {
	entry(fields).WithError(err).Error(msg)
}

func entry(fields []Fields) *logrus.Entry {
	e := logrus.NewEntry(log)
	for _, f := range fields {
		e = e.WithFields(f)
	}
	return e
}
