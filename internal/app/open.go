package app

import (
	"context"
	"fmt"
	"path/filepath"

	"astrolog/internal/config"
	"astrolog/internal/db"
	"astrolog/internal/files"
	"astrolog/internal/logging"
	"astrolog/internal/store"
)

// Open prepares the data directory named by cfg and loads every collection.
// Collections that fail to load are logged and start from defaults; only
// failures to create the directory, the loggers or the backup journal are
// returned.
func (a *App) Open(ctx context.Context, cfg *config.Config) error {
	// Close any previously open data directory to prevent resource leaks.
	if a.db != nil || a.logs != nil {
		_ = a.Close()
	}

	dataDir, err := filepath.Abs(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("app: resolve data dir: %w", err)
	}

	policy, err := store.ParseSavePolicy(cfg.Save.Policy)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	if _, err := files.EnsureHiddenDir(dataDir); err != nil {
		return fmt.Errorf("app: prepare data dir: %w", err)
	}
	layout := config.NewLayout(dataDir)

	logs, err := logging.NewManager(layout.LogDir(), cfg.Logging.Level, cfg.Logging.RotationMB, cfg.Logging.ToConsole)
	if err != nil {
		return fmt.Errorf("app: init logging: %w", err)
	}

	var journal *db.DB
	if cfg.Backup.Enabled {
		journal, err = db.Open(layout.BackupDB())
		if err != nil {
			logs.Close()
			return fmt.Errorf("app: open backup journal: %w", err)
		}
	}

	st, failures := store.Open(store.PathsFor(layout), logs.System)

	a.config = cfg
	a.layout = layout
	a.store = st
	a.db = journal
	a.logs = logs
	a.policy = policy

	if len(failures) > 0 {
		logs.System.Info("app: %d collection(s) started from defaults", len(failures))
	}

	if report := a.CheckIntegrity(); !report.OK() {
		logs.System.Warn("app: integrity check found %d problem(s)", report.Problems())
	}

	logs.System.Info("app: data directory opened: %s", dataDir)
	return nil
}
