package config

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps a level name to a logrus level.
func ParseLevel(name string) (logrus.Level, error) {
	switch name {
	case "", "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger builds the process logger.
//
// Debug level logs human-readable text with full timestamps; every other
// level logs JSON so the output can be ingested by log collectors.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := ParseLevel(level)
	logger.SetLevel(lvl)

	if lvl == logrus.DebugLevel {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if err != nil {
		logger.WithError(err).Warn("Falling back to info logging")
	}
	return logger
}
