package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" TRACE ", logrus.TraceLevel},
		{"warn", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel("info", &buf)
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug output to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("expected info output, got %q", out)
	}
}
