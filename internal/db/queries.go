package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// scanner is the common interface satisfied by both *sql.Row and *sql.Rows,
// allowing a single scan function per entity.
type scanner interface {
	Scan(dest ...any) error
}

// ErrNotFound is returned when a lookup or delete targets a non-existent row.
var ErrNotFound = errors.New("record not found")

// now returns the current time formatted as RFC3339 for storage.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseTime parses an RFC3339 string into time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ---------------------------------------------------------------------------
// Backups
// ---------------------------------------------------------------------------

const backupColumns = `b.id, b.reason, b.created_at,
	COUNT(d.collection), COALESCE(SUM(LENGTH(d.content)), 0)`

// CreateBackup records docs, keyed by collection name, as one backup.
func (d *DB) CreateBackup(ctx context.Context, reason string, docs []BackupDocument) (*Backup, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create backup: begin: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO backups (reason, created_at) VALUES (?, ?)`,
		reason, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create backup: last insert id: %w", err)
	}

	var size int64
	for _, doc := range docs {
		content := doc.Content
		if content == nil {
			content = []byte{}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO backup_documents (backup_id, collection, content) VALUES (?, ?, ?)`,
			id, doc.Collection, content,
		); err != nil {
			return nil, fmt.Errorf("create backup: document %s: %w", doc.Collection, err)
		}
		size += int64(len(content))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create backup: commit: %w", err)
	}

	createdAt, err := parseTime(ts)
	if err != nil {
		return nil, fmt.Errorf("create backup: parse time: %w", err)
	}
	return &Backup{
		ID:        id,
		Reason:    reason,
		CreatedAt: createdAt,
		Documents: len(docs),
		Size:      size,
	}, nil
}

// GetBackup returns a single backup by ID, or ErrNotFound.
func (d *DB) GetBackup(ctx context.Context, id int64) (*Backup, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT `+backupColumns+`
		 FROM backups b LEFT JOIN backup_documents d ON d.backup_id = b.id
		 WHERE b.id = ?
		 GROUP BY b.id`, id,
	)
	b, err := scanBackup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get backup (id=%d): %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

// ListBackups returns every backup, newest first.
func (d *DB) ListBackups(ctx context.Context) ([]Backup, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+backupColumns+`
		 FROM backups b LEFT JOIN backup_documents d ON d.backup_id = b.id
		 GROUP BY b.id
		 ORDER BY b.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// BackupDocuments returns the recorded documents of a backup ordered by
// collection name, or ErrNotFound if the backup does not exist.
func (d *DB) BackupDocuments(ctx context.Context, id int64) ([]BackupDocument, error) {
	if _, err := d.GetBackup(ctx, id); err != nil {
		return nil, err
	}

	rows, err := d.conn.QueryContext(ctx,
		`SELECT collection, content FROM backup_documents
		 WHERE backup_id = ? ORDER BY collection`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup documents: %w", err)
	}
	defer rows.Close()

	var out []BackupDocument
	for rows.Next() {
		var doc BackupDocument
		if err := rows.Scan(&doc.Collection, &doc.Content); err != nil {
			return nil, fmt.Errorf("scan backup document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// DeleteBackup removes a backup and its documents.
func (d *DB) DeleteBackup(ctx context.Context, id int64) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete backup: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete backup (id=%d): %w", id, ErrNotFound)
	}
	return nil
}

// PruneBackups deletes all but the newest keep backups and returns how many
// were removed. keep <= 0 disables pruning.
func (d *DB) PruneBackups(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := d.conn.ExecContext(ctx,
		`DELETE FROM backups WHERE id NOT IN (
			SELECT id FROM backups ORDER BY id DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune backups: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune backups: rows affected: %w", err)
	}
	return n, nil
}

func scanBackup(s scanner) (*Backup, error) {
	var b Backup
	var createdAt string
	if err := s.Scan(&b.ID, &b.Reason, &createdAt, &b.Documents, &b.Size); err != nil {
		return nil, fmt.Errorf("scan backup: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = t
	return &b, nil
}
