package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"astrolog/internal/config"
	"astrolog/internal/db"
	"astrolog/internal/store"
)

// ErrBackupsDisabled is returned by backup commands when the journal is not
// open.
var ErrBackupsDisabled = errors.New("backups are disabled")

func (a *App) requireJournal() error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if a.db == nil {
		return ErrBackupsDisabled
	}
	return nil
}

// Backup records the current on-disk bytes of every document. Missing
// documents are left out. The journal is pruned to the configured size
// afterwards.
func (a *App) Backup(ctx context.Context, reason string) (*db.Backup, error) {
	if err := a.requireJournal(); err != nil {
		return nil, err
	}

	paths := a.store.Paths()
	var docs []db.BackupDocument
	for _, id := range store.Collections() {
		path, ok := paths[id]
		if !ok {
			continue
		}
		data, err := config.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("app: backup: %w", err)
		}
		docs = append(docs, db.BackupDocument{Collection: string(id), Content: data})
	}

	b, err := a.db.CreateBackup(ctx, reason, docs)
	if err != nil {
		return nil, fmt.Errorf("app: backup: %w", err)
	}

	removed, err := a.db.PruneBackups(ctx, a.config.Backup.Keep)
	if err != nil {
		a.logs.System.Warn("app: prune backups: %v", err)
	} else if removed > 0 {
		a.logs.System.Debug("app: pruned %d old backup(s)", removed)
	}

	a.logs.System.Info("app: backup %d recorded (%s, %d documents)", b.ID, reason, b.Documents)
	return b, nil
}

// ListBackups returns the journal, newest first.
func (a *App) ListBackups(ctx context.Context) ([]db.Backup, error) {
	if err := a.requireJournal(); err != nil {
		return nil, err
	}
	list, err := a.db.ListBackups(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return list, nil
}

// RestoreBackup installs the documents recorded in backup id and writes
// them back to the data directory. Every document is parsed before the
// store is touched, so a corrupt backup changes nothing, and the current
// documents are backed up first. The restored collections replace the state
// in one step; the report lists any document that could not be written, in
// which case the error is also non-nil.
func (a *App) RestoreBackup(ctx context.Context, id int64) (*store.SaveReport, error) {
	if err := a.requireJournal(); err != nil {
		return nil, err
	}

	docs, err := a.db.BackupDocuments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("app: restore backup: %w", err)
	}

	paths := a.store.Paths()
	cols := make([]*store.Collection, 0, len(docs))
	for _, doc := range docs {
		cid, err := store.ParseCollectionID(doc.Collection)
		if err != nil {
			return nil, fmt.Errorf("app: restore backup %d: %w", id, err)
		}
		path, ok := paths[cid]
		if !ok {
			continue
		}
		c, err := store.ParseCollection(cid, path, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("app: restore backup %d: %w", id, err)
		}
		cols = append(cols, c)
	}

	if _, err := a.Backup(ctx, db.ReasonRestore); err != nil {
		return nil, fmt.Errorf("app: restore backup %d: %w", id, err)
	}

	report := a.store.Restore(cols...)
	a.notify(EventStateUpdated, nil)
	if err := report.Err(); err != nil {
		return report, fmt.Errorf("app: restore backup %d: %w", id, err)
	}
	a.logs.System.Info("app: restored backup %d (%d documents)", id, len(report.Saved))
	return report, nil
}
