package store

import (
	"errors"
	"os"
	"sync"
)

// Logger is the subset of the logging API the store writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Store owns the single in-process AppState. Any number of readers may hold
// it at once; a writer excludes everyone else.
type Store struct {
	mu      sync.RWMutex
	state   AppState
	version uint64 // bumped on every exclusive section; guarded by mu

	paths Paths
	log   Logger

	writersMu sync.Mutex
	writers   map[string]*docWriter
}

// New returns a store holding default state. paths may be nil when the
// store is never persisted through SaveAll.
func New(paths Paths, log Logger) *Store {
	if log == nil {
		log = nopLogger{}
	}
	if paths == nil {
		paths = Paths{}
	}
	return &Store{
		state:   NewAppState(),
		paths:   paths,
		log:     log,
		writers: make(map[string]*docWriter),
	}
}

// Open builds a store and loads every collection from paths independently.
// A collection that fails to load keeps its default value; the failures are
// logged and returned, but the store is always usable.
func Open(paths Paths, log Logger) (*Store, []*LoadError) {
	s := New(paths, log)

	var failures []*LoadError
	for _, id := range Collections() {
		path, ok := s.paths[id]
		if !ok {
			continue
		}
		err := s.Load(id, path)
		if err == nil {
			s.log.Info("store: loaded %s from %s", id, path)
			continue
		}

		var le *LoadError
		if !errors.As(err, &le) {
			le = &LoadError{Collection: id, Path: path, Kind: LoadIo, Err: err}
		}
		failures = append(failures, le)

		if le.Kind == LoadIo && errors.Is(le.Err, os.ErrNotExist) {
			s.log.Info("store: %s not found at %s, using defaults", id, path)
		} else {
			s.log.Warn("store: %v; using defaults", le)
		}
	}
	return s, failures
}

// Paths returns the document paths the store was opened with.
func (s *Store) Paths() Paths {
	out := make(Paths, len(s.paths))
	for k, v := range s.paths {
		out[k] = v
	}
	return out
}

// ReadHandle grants shared access until Release is called.
type ReadHandle struct {
	s    *Store
	once sync.Once
}

// AcquireRead blocks only while a writer holds the store.
func (s *Store) AcquireRead() *ReadHandle {
	s.mu.RLock()
	return &ReadHandle{s: s}
}

// State returns the live state. Callers must not modify it or retain it
// past Release.
func (h *ReadHandle) State() *AppState { return &h.s.state }

// Release gives up the handle. Calling it more than once is a no-op.
func (h *ReadHandle) Release() {
	h.once.Do(h.s.mu.RUnlock)
}

// WriteHandle grants exclusive access until Release is called.
type WriteHandle struct {
	s    *Store
	once sync.Once
}

// AcquireWrite blocks until no reader or writer holds the store.
func (s *Store) AcquireWrite() *WriteHandle {
	s.mu.Lock()
	return &WriteHandle{s: s}
}

// State returns the live, mutable state.
func (h *WriteHandle) State() *AppState { return &h.s.state }

// Release gives up the handle. Calling it more than once is a no-op.
func (h *WriteHandle) Release() {
	h.once.Do(func() {
		h.s.version++
		h.s.mu.Unlock()
	})
}

// View runs fn with shared access. fn must not modify the state or keep
// references into it after returning.
func (s *Store) View(fn func(st *AppState)) {
	h := s.AcquireRead()
	defer h.Release()
	fn(h.State())
}

// Mutate runs fn with exclusive access on a copy of the state. The copy
// replaces the state only if fn returns nil, so a failed mutation leaves no
// partial change behind.
func (s *Store) Mutate(fn func(st *AppState) error) error {
	h := s.AcquireWrite()
	defer h.Release()
	return mutateLocked(h.State(), fn)
}

func mutateLocked(st *AppState, fn func(st *AppState) error) error {
	draft := st.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	*st = draft
	return nil
}
