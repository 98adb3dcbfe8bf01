// Package log provides the logging interface used throughout the
// emulator, backed by logrus.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface accepted by every component.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Tracef(format string, args ...interface{})
	Fatal(args ...interface{})
}

// New returns a Logger writing to stderr at info level.
func New() Logger {
	return NewWithLevel("info", os.Stderr)
}

// NewWithLevel returns a Logger writing to w at the named level. Unknown
// level names fall back to info.
func NewWithLevel(level string, w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// ParseLevel maps a verbosity name onto a logrus level.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
