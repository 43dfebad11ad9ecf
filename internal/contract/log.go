package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared structured logger. It writes to stderr so stdout stays
// free for command output and the MCP stdio protocol.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: DateTimeFormat,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogLevel adjusts the level of the shared logger.
func SetLogLevel(level logrus.Level) {
	Logger.SetLevel(level)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}
