package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
	DebugLogger *logrus.Logger
)

func init() {
	// Packages used from tests never call InitLoggers, so start with stdout loggers.
	InfoLogger = newLogger(os.Stdout, logrus.InfoLevel)
	WarnLogger = newLogger(os.Stdout, logrus.WarnLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)
	DebugLogger = newLogger(os.Stdout, logrus.DebugLevel)
}

// InitLoggers configures the shared loggers. When LOG_FILE is set every logger also
// writes to a rotating file.
func InitLoggers() {
	var out io.Writer = os.Stdout
	var errOut io.Writer = os.Stderr

	if path := os.Getenv("LOG_FILE"); path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		errOut = io.MultiWriter(os.Stderr, rotator)
	}

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		level = parsed
	}

	InfoLogger = newLogger(out, level)
	WarnLogger = newLogger(out, level)
	ErrorLogger = newLogger(errOut, level)
	DebugLogger = newLogger(out, logrus.DebugLevel)
}

func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	return l
}
