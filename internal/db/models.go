package db

import "time"

// Backup reasons recorded by the application.
const (
	ReasonSaveState = "save_state"
	ReasonManual    = "manual"
	ReasonRestore   = "pre_restore"
)

// Backup is one journal entry: the on-disk bytes of every document at the
// moment it was taken.
type Backup struct {
	ID        int64
	Reason    string
	CreatedAt time.Time
	Documents int
	Size      int64
}

// BackupDocument is the recorded content of one collection's document.
type BackupDocument struct {
	Collection string
	Content    []byte
}
