package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Manager owns every log category used by astrolog. The expected layout:
//
//	<logDir>/system.log
//	<logDir>/web.log
type Manager struct {
	// System is the rolling log for startup, config, store, persistence and
	// backup events.
	System *Logger

	// Web is the rolling log for HTTP access and event streaming.
	Web *Logger

	logDir string
}

// NewManager creates logDir and opens the System and Web loggers.
func NewManager(logDir string, level string, rotationMB int, toConsole bool) (*Manager, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: mkdir %s: %w", logDir, err)
	}

	sysLog, err := NewLogger(filepath.Join(logDir, "system.log"), "system", level, rotationMB, toConsole)
	if err != nil {
		return nil, fmt.Errorf("logging: system logger: %w", err)
	}

	webLog, err := NewLogger(filepath.Join(logDir, "web.log"), "web", level, rotationMB, toConsole)
	if err != nil {
		sysLog.Close()
		return nil, fmt.Errorf("logging: web logger: %w", err)
	}

	return &Manager{
		System: sysLog,
		Web:    webLog,
		logDir: logDir,
	}, nil
}

// Dir returns the directory the log files live in.
func (m *Manager) Dir() string { return m.logDir }

// Close closes every logger opened by the Manager.
func (m *Manager) Close() error {
	var errs []error
	for _, l := range []*Logger{m.System, m.Web} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
