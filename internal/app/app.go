// Package app is the command layer of astrolog. An App carries every
// dependency a command needs: the state store, the backup journal, the
// loggers and the OS opener.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"astrolog/internal/config"
	"astrolog/internal/db"
	"astrolog/internal/logging"
	"astrolog/internal/process"
	"astrolog/internal/store"
)

// Events emitted to subscribers.
const (
	EventStateUpdated = "state_updated"
	EventCloseLock    = "close_lock"
)

// Opener opens a path or URL with the OS default handler.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// Listener receives an event name and its payload.
type Listener func(event string, payload any)

// App holds all application-wide state for astrolog. It is created once per
// process and shared with the HTTP and CLI layers.
type App struct {
	config *config.Config
	layout config.Layout
	store  *store.Store
	db     *db.DB
	logs   *logging.Manager
	opener Opener
	policy store.SavePolicy

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.config }

// Layout returns the on-disk layout of the data directory.
func (a *App) Layout() config.Layout { return a.layout }

// Store returns the state store.
func (a *App) Store() *store.Store { return a.store }

// DB returns the backup journal. Nil when backups are disabled.
func (a *App) DB() *db.DB { return a.db }

// Logs returns the logging manager.
func (a *App) Logs() *logging.Manager { return a.logs }

// New creates a new App instance. It does NOT open a data directory yet.
func New() *App {
	return &App{
		opener:    process.NewOpener(),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for every event and returns a function removing it.
func (a *App) Subscribe(fn Listener) func() {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.listenersMu.Lock()
		defer a.listenersMu.Unlock()
		delete(a.listeners, id)
	}
}

// notify delivers an event to every subscriber. Listeners run on the
// caller's goroutine and must not block.
func (a *App) notify(event string, payload any) {
	a.listenersMu.Lock()
	fns := make([]Listener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.listenersMu.Unlock()

	for _, fn := range fns {
		fn(event, payload)
	}
}

// requireOpen returns an error when Open has not succeeded.
func (a *App) requireOpen() error {
	if a.store == nil {
		return fmt.Errorf("app: no data directory open")
	}
	return nil
}

// Close cleanly shuts down all resources.
func (a *App) Close() error {
	var errs []error

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close db: %w", err))
		}
		a.db = nil
	}

	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close logs: %w", err))
		}
		a.logs = nil
	}

	return errors.Join(errs...)
}
