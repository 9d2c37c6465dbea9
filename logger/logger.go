package logger

import (
	"io"
	"strings"

	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/sirupsen/logrus"
)

// RequestIDField is the field name used to correlate log lines of one HTTP request
const RequestIDField = "requestID"

// Setup will configure logrus logger
func Setup(cfg config.Config) {
	SetupWithOutput(cfg, nil)
}

// SetupWithOutput configures logrus like Setup and redirects the output when out is not nil
// the CLI uses it to keep stdout clean for the report
func SetupWithOutput(cfg config.Config, out io.Writer) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.Logs.OutputLogsAsJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if out != nil {
		logrus.SetOutput(out)
	}

	logrus.SetLevel(StringToLogrusLogType(cfg.Logs.Level))
}

// ForRequest returns an entry carrying the request id
func ForRequest(requestID string) *logrus.Entry {
	return logrus.WithField(RequestIDField, requestID)
}

// StringToLogrusLogType will convert string to the right logrus level
func StringToLogrusLogType(logLevel string) logrus.Level {
	logLevelLowerCase := strings.ToLower(strings.TrimSpace(logLevel))
	switch logLevelLowerCase {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}
