package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// Logger writes leveled, timestamped log lines.
// A Logger is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  LogLevel
	colors bool
}

// NewLogger creates a logger writing to out at the given minimum level
func NewLogger(out io.Writer, level LogLevel) *Logger {
	return &Logger{out: out, level: level}
}

var std = NewLogger(os.Stderr, LevelInfo)

func init() {
	std.colors = IsTerminal(os.Stderr.Fd())
}

// Default returns the process logger used by the package-level helpers
func Default() *Logger {
	return std
}

// SetLevel sets the minimum log level to display
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current minimum level
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetColors enables or disables colored output
func (l *Logger) SetColors(enabled bool) {
	l.mu.Lock()
	l.colors = enabled
	l.mu.Unlock()
}

func (l *Logger) logf(level LogLevel, color, tag, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	ts := time.Now().Format("15:04:05")
	if l.colors {
		ts = color + ts + colorReset
	}
	fmt.Fprintf(l.out, "%s %s %s\n", ts, tag, fmt.Sprintf(format, args...))
}

// Debugf logs debug messages
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, colorGray, "[DEBUG]", format, args...)
}

// Infof logs informational messages
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, colorCyan, "[INFO] ", format, args...)
}

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, colorYellow, "[WARN] ", format, args...)
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, colorRed, "[ERROR]", format, args...)
}

// Successf logs success messages (always shown unless quiet)
func (l *Logger) Successf(format string, args ...interface{}) {
	l.logf(LevelInfo, colorGreen, "[OK]   ", format, args...)
}

// SetLogLevel sets the minimum level of the default logger
func SetLogLevel(level LogLevel) {
	std.SetLevel(level)
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		std.SetLevel(LevelDebug)
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(quiet bool) {
	if quiet {
		std.SetLevel(LevelError)
	}
}

// SetColors enables or disables colored output on the default logger
func SetColors(enabled bool) {
	std.SetColors(enabled)
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	std.Infof(format, args...)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// SuccessLog logs success messages (always shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	std.Successf(format, args...)
}

// IsQuiet reports whether the default logger only shows errors
func IsQuiet() bool {
	return std.Level() >= LevelError
}
