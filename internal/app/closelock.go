package app

import (
	"errors"

	"astrolog/internal/store"
)

// ErrCloseLocked is returned by RequestClose while the close lock is held.
var ErrCloseLocked = errors.New("close is locked")

// AddCloseLock prevents the application from closing until
// RemoveCloseLock is called. The lock is never persisted.
func (a *App) AddCloseLock() error {
	return a.setCloseLock(true)
}

// RemoveCloseLock releases the close lock.
func (a *App) RemoveCloseLock() error {
	return a.setCloseLock(false)
}

func (a *App) setCloseLock(locked bool) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	h := a.store.AcquireWrite()
	st := h.State()
	changed := st.CloseLock != locked
	st.CloseLock = locked
	h.Release()

	if changed {
		a.logs.System.Debug("app: close lock set to %t", locked)
		a.notify(EventCloseLock, locked)
	}
	return nil
}

// CloseLocked reports whether the close lock is held.
func (a *App) CloseLocked() bool {
	if a.store == nil {
		return false
	}
	var locked bool
	a.store.View(func(st *store.AppState) { locked = st.CloseLock })
	return locked
}

// RequestClose returns ErrCloseLocked while the close lock is held.
func (a *App) RequestClose() error {
	if a.CloseLocked() {
		return ErrCloseLocked
	}
	return nil
}
