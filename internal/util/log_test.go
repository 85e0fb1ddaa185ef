package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN]  warn 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLoggerNoColorsByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)
	l.Successf("done")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("unexpected ANSI escape in %q", buf.String())
	}

	buf.Reset()
	l.SetColors(true)
	l.Infof("colored")
	if !strings.Contains(buf.String(), colorCyan) {
		t.Errorf("expected cyan timestamp in %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Infof("ignored")
}
