// Package logger provides leveled logging for the aquarium simulator.
// Every feeding decision and clock transition should be traceable through this.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger provides leveled logging with context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	debug       bool
}

// NewLogger creates a new logger instance writing to stdout and stderr.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[AQUA-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[AQUA-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[AQUA-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
		debugLogger: log.New(os.Stdout, "[AQUA-DEBUG] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// NewWithWriter creates a logger that sends every level to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(w, "[AQUA-INFO] ", 0),
		warnLogger:  log.New(w, "[AQUA-WARN] ", 0),
		errorLogger: log.New(w, "[AQUA-ERROR] ", 0),
		debugLogger: log.New(w, "[AQUA-DEBUG] ", 0),
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

// SetDebug toggles debug output.
func (l *Logger) SetDebug(enabled bool) {
	l.debug = enabled
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...any) {
	l.output(l.infoLogger, format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) {
	l.output(l.warnLogger, format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	l.output(l.errorLogger, format, args...)
}

// Debug logs only when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.output(l.debugLogger, format, args...)
}

// Event logs a journaled simulation event for the audit trail.
func (l *Logger) Event(eventType, subject, details string) {
	l.output(l.infoLogger, "[EVENT:%s] %s | %s", eventType, subject, details)
}

func (l *Logger) output(target *log.Logger, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	// calldepth 3 reports the caller of Info/Warn/Error rather than this helper.
	target.Output(3, msg)
}
