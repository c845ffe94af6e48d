package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"astrolog/internal/config"
)

// SavePolicy decides what SaveAll does after a collection fails.
type SavePolicy int

const (
	// BestEffort attempts every collection and reports all failures.
	BestEffort SavePolicy = iota
	// AbortOnFirst stops at the first failure; later collections are skipped.
	AbortOnFirst
)

// ParseSavePolicy maps the configuration value onto a SavePolicy.
func ParseSavePolicy(s string) (SavePolicy, error) {
	switch s {
	case config.PolicyBestEffort, "":
		return BestEffort, nil
	case config.PolicyAbortOnFirst:
		return AbortOnFirst, nil
	default:
		return BestEffort, fmt.Errorf("store: unknown save policy %q", s)
	}
}

// LoadCollection reads and parses the document for id at path. It does not
// touch any store.
func LoadCollection(id CollectionID, path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Collection: id, Path: path, Kind: LoadIo, Err: err}
	}
	return ParseCollection(id, path, data)
}

// ParseCollection decodes document bytes for id. path is only used in
// errors.
func ParseCollection(id CollectionID, path string, data []byte) (*Collection, error) {
	payload, err := unwrapDocument(id, data)
	if err != nil {
		return nil, &LoadError{Collection: id, Path: path, Kind: LoadParse, Err: err}
	}
	c, err := decodeCollection(id, payload)
	if err != nil {
		return nil, &LoadError{Collection: id, Path: path, Kind: LoadParse, Err: err}
	}
	return c, nil
}

// Load reads the document for id at path and installs it, replacing the
// in-memory collection. The file is read and parsed before the store is
// locked. On error the store is unchanged.
func (s *Store) Load(id CollectionID, path string) error {
	c, err := LoadCollection(id, path)
	if err != nil {
		return err
	}
	s.Install(c)
	return nil
}

// Install replaces the collection held in c.
func (s *Store) Install(c *Collection) {
	h := s.AcquireWrite()
	defer h.Release()
	c.apply(h.State())
}

// encoded is a document rendered under the lock, ready to be written after
// the lock is released.
type encoded struct {
	id      CollectionID
	path    string
	data    []byte
	version uint64
}

// encodeLocked renders collection id stamped with version. Must be called
// with mu held.
func (s *Store) encodeLocked(id CollectionID, path string, version uint64) (encoded, *SaveError) {
	v, err := payload(id, &s.state)
	if err == nil {
		var data []byte
		data, err = encodeDocument(v)
		if err == nil {
			return encoded{id: id, path: path, data: data, version: version}, nil
		}
	}
	return encoded{}, &SaveError{Collection: id, Path: path, Kind: SaveSerialize, Err: err}
}

// docWriter serialises writes to one path and remembers the newest state
// version written there.
type docWriter struct {
	mu      sync.Mutex
	wrote   bool
	version uint64
}

func (s *Store) writerFor(path string) *docWriter {
	s.writersMu.Lock()
	defer s.writersMu.Unlock()
	w, ok := s.writers[path]
	if !ok {
		w = &docWriter{}
		s.writers[path] = w
	}
	return w
}

// write persists doc unless a newer version already reached its path.
func (s *Store) write(doc encoded) error {
	w := s.writerFor(doc.path)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.wrote && doc.version < w.version {
		s.log.Debug("store: skip stale write of %s (version %d < %d)", doc.id, doc.version, w.version)
		return nil
	}
	if err := config.WriteFileAtomic(doc.path, doc.data, 0o644); err != nil {
		return &SaveError{Collection: doc.id, Path: doc.path, Kind: SaveIo, Err: err}
	}
	w.wrote = true
	w.version = doc.version
	return nil
}

// Save encodes collection id under a shared lock, releases it, then writes
// the document to path.
func (s *Store) Save(id CollectionID, path string) error {
	h := s.AcquireRead()
	doc, serr := s.encodeLocked(id, path, s.version)
	h.Release()
	if serr != nil {
		return serr
	}
	return s.write(doc)
}

// SaveReport is the outcome of SaveAll.
type SaveReport struct {
	Saved   []CollectionID
	Failed  map[CollectionID]*SaveError
	Skipped []CollectionID
}

// OK reports whether every collection was saved.
func (r *SaveReport) OK() bool { return len(r.Failed) == 0 && len(r.Skipped) == 0 }

// Err joins every failure in save order, or returns nil.
func (r *SaveReport) Err() error {
	var errs []error
	for _, id := range Collections() {
		if e, ok := r.Failed[id]; ok {
			errs = append(errs, e)
		}
	}
	if len(r.Skipped) > 0 {
		errs = append(errs, fmt.Errorf("store: skipped %v after failure", r.Skipped))
	}
	return errors.Join(errs...)
}

// SaveAll writes every collection to the store's paths. All documents are
// encoded from the same moment under one shared lock; after the lock is
// released they are written in order, following policy on failure.
func (s *Store) SaveAll(policy SavePolicy) *SaveReport {
	report := &SaveReport{Failed: make(map[CollectionID]*SaveError)}

	ids := make([]CollectionID, 0, len(s.paths))
	for _, id := range Collections() {
		if _, ok := s.paths[id]; ok {
			ids = append(ids, id)
		}
	}

	docs := make([]encoded, len(ids))
	encodeErrs := make([]*SaveError, len(ids))
	h := s.AcquireRead()
	for i, id := range ids {
		docs[i], encodeErrs[i] = s.encodeLocked(id, s.paths[id], s.version)
	}
	h.Release()

	for i, id := range ids {
		serr := encodeErrs[i]
		if serr == nil {
			if err := s.write(docs[i]); err != nil {
				serr = asSaveError(err, id, s.paths[id])
			}
		}
		if serr == nil {
			report.Saved = append(report.Saved, id)
			continue
		}

		report.Failed[id] = serr
		s.log.Error("store: %v", serr)
		if policy == AbortOnFirst {
			report.Skipped = append(report.Skipped, ids[i+1:]...)
			break
		}
	}
	return report
}

// MutateAndSave runs fn like Mutate and, if it succeeds, persists the named
// collections as they stood when fn returned. Encoding happens before the
// write lock is released; file writes happen after.
func (s *Store) MutateAndSave(fn func(st *AppState) error, ids ...CollectionID) error {
	h := s.AcquireWrite()
	if err := mutateLocked(h.State(), fn); err != nil {
		h.Release()
		return err
	}
	// Release bumps the version; stamp the documents with the value the
	// state holds once this section ends.
	next := s.version + 1
	docs := make([]encoded, 0, len(ids))
	var errs []error
	for _, id := range ids {
		path, ok := s.paths[id]
		if !ok {
			errs = append(errs, fmt.Errorf("store: no path configured for %s", id))
			continue
		}
		doc, serr := s.encodeLocked(id, path, next)
		if serr != nil {
			errs = append(errs, serr)
			continue
		}
		docs = append(docs, doc)
	}
	h.Release()

	for _, doc := range docs {
		if err := s.write(doc); err != nil {
			s.log.Error("store: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func asSaveError(err error, id CollectionID, path string) *SaveError {
	var se *SaveError
	if errors.As(err, &se) {
		return se
	}
	return &SaveError{Collection: id, Path: path, Kind: SaveIo, Err: err}
}

// Restore installs every collection in cols in one exclusive section and then
// writes them through the same ordered writers MutateAndSave uses, so an
// older encode can never land over a restored document. The in-memory state
// changes as a whole. A document that fails to write keeps its previous
// content on disk and is listed in the report; collections without a
// configured path are installed but not written.
func (s *Store) Restore(cols ...*Collection) *SaveReport {
	report := &SaveReport{Failed: make(map[CollectionID]*SaveError)}

	h := s.AcquireWrite()
	for _, c := range cols {
		c.apply(h.State())
	}
	next := s.version + 1
	docs := make([]encoded, 0, len(cols))
	for _, c := range cols {
		path, ok := s.paths[c.ID]
		if !ok {
			continue
		}
		doc, serr := s.encodeLocked(c.ID, path, next)
		if serr != nil {
			report.Failed[c.ID] = serr
			continue
		}
		docs = append(docs, doc)
	}
	h.Release()

	for _, doc := range docs {
		if err := s.write(doc); err != nil {
			serr := asSaveError(err, doc.id, doc.path)
			report.Failed[doc.id] = serr
			s.log.Error("store: restore: %v", serr)
			continue
		}
		report.Saved = append(report.Saved, doc.id)
	}
	return report
}
