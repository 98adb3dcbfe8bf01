package log

// nullLogger is a logger that does nothing.
type nullLogger struct{}

func (n nullLogger) Fatal(...interface{}) {}

func (n nullLogger) Infof(string, ...interface{}) {}

func (n nullLogger) Warnf(string, ...interface{}) {}

func (n nullLogger) Errorf(string, ...interface{}) {}

func (n nullLogger) Debugf(string, ...interface{}) {}

func (n nullLogger) Tracef(string, ...interface{}) {}

// NewNullLogger returns a logger that does nothing.
func NewNullLogger() Logger {
	return nullLogger{}
}
