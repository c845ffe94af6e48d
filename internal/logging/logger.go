package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// parseLevel converts a string level name to a logrus level. Unrecognised
// strings default to info.
func parseLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is a thread-safe, level-filtered logger that writes timestamped
// lines to a file and optionally mirrors them to stderr. Formatting and level
// filtering are delegated to logrus; the Logger itself is the io.Writer
// logrus writes to, so it can check the file size and rotate before every
// line.
type Logger struct {
	mu        sync.Mutex
	filePath  string
	file      *os.File
	entry     *logrus.Entry
	maxBytes  int64
	toConsole bool
	console   io.Writer
}

// NewLogger opens (or creates) the log file at path and returns a ready
// Logger tagged with component. level is one of "debug", "info", "warn",
// "error". rotationMB is the maximum file size in megabytes before rotation
// occurs. When toConsole is true every line is also printed to stderr.
func NewLogger(path, component, level string, rotationMB int, toConsole bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	l := &Logger{
		filePath:  path,
		file:      f,
		maxBytes:  int64(rotationMB) * 1024 * 1024,
		toConsole: toConsole,
		console:   os.Stderr,
	}

	base := logrus.New()
	base.SetOutput(l)
	base.SetLevel(parseLevel(level))
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	l.entry = base.WithField("component", component)
	return l, nil
}

// WithField returns a structured entry carrying key on top of the
// component field.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.entry.WithField(key, value)
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.entry.Debugf(msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.entry.Infof(msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.entry.Warnf(msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.entry.Errorf(msg, args...)
}

// Write implements io.Writer for logrus. Each call carries one formatted
// line.
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return 0, os.ErrClosed
	}

	l.checkRotate()

	n, err := l.file.Write(p)
	if l.toConsole {
		l.console.Write(p)
	}
	return n, err
}

// checkRotate stats the current log file and, if it exceeds the configured
// threshold, performs a rotation. Must be called with l.mu held.
func (l *Logger) checkRotate() {
	info, err := l.file.Stat()
	if err != nil {
		return
	}
	if info.Size() < l.maxBytes {
		return
	}

	// The open handle stays valid on Unix after the rename.
	if err := rotate(l.filePath, defaultKeep); err != nil {
		fmt.Fprintf(os.Stderr, "logging: rotation failed: %v\n", err)
		return
	}

	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: reopen after rotation failed: %v\n", err)
		return
	}

	old := l.file
	l.file = f
	old.Close()
}

// Close closes the underlying log file. Later writes fail with
// os.ErrClosed.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
