package store

import (
	"fmt"

	"github.com/google/uuid"
)

// LoadErrorKind classifies a LoadError.
type LoadErrorKind int

const (
	// LoadIo means the document could not be opened or read.
	LoadIo LoadErrorKind = iota + 1
	// LoadParse means the contents do not match the collection's schema.
	LoadParse
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadIo:
		return "io"
	case LoadParse:
		return "parse"
	default:
		return "unknown"
	}
}

// LoadError reports why one collection could not be loaded.
type LoadError struct {
	Collection CollectionID
	Path       string
	Kind       LoadErrorKind
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("store: load %s from %s: %s: %v", e.Collection, e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveErrorKind classifies a SaveError.
type SaveErrorKind int

const (
	// SaveIo means the document could not be written.
	SaveIo SaveErrorKind = iota + 1
	// SaveSerialize means the in-memory collection could not be encoded.
	SaveSerialize
)

func (k SaveErrorKind) String() string {
	switch k {
	case SaveIo:
		return "io"
	case SaveSerialize:
		return "serialize"
	default:
		return "unknown"
	}
}

// SaveError reports why one collection could not be saved.
type SaveError struct {
	Collection CollectionID
	Path       string
	Kind       SaveErrorKind
	Err        error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("store: save %s to %s: %s: %v", e.Collection, e.Path, e.Kind, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ProjectionErrorKind classifies a ProjectionError.
type ProjectionErrorKind string

// DanglingReference means a session names a light frame that does not exist.
const DanglingReference ProjectionErrorKind = "dangling_reference"

// ProjectionError reports a row that could not be derived for the front end.
type ProjectionError struct {
	Kind         ProjectionErrorKind `json:"kind"`
	SessionID    uuid.UUID           `json:"session_id"`
	LightFrameID uuid.UUID           `json:"light_frame_id"`
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("store: session %s: %s: light frame %s not found", e.SessionID, e.Kind, e.LightFrameID)
}
