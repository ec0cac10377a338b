package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger builds the process logger. An empty level falls back to
// LOG_LEVEL, then info.
func InitLogger(level string) *logrus.Logger {
	Logger = logrus.New()

	// Set formatter
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	Logger.SetLevel(ParseLevel(level))

	Logger.SetOutput(os.Stdout)
	return Logger
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func GetLogger() *logrus.Logger {
	if Logger == nil {
		InitLogger("")
	}
	return Logger
}
