package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolog/internal/db"
	"astrolog/internal/models"
	"astrolog/internal/store"
	"astrolog/internal/theme"
)

func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "config.json"),
		"--data-dir", dataDir,
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestViewOnEmptyDataDir(t *testing.T) {
	out, err := execute(t, t.TempDir(), "view")
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []any{}, view["log_data"])
	assert.Equal(t, false, view["close_lock"])
}

func TestSaveWritesEveryCollection(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "save")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")

	entries, err := os.ReadDir(filepath.Join(dir, ".astrolog"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "preferences.json")
	assert.Contains(t, names, "imageList.json")
}

func TestBackupCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "save")
	require.NoError(t, err)

	out, err := execute(t, dir, "backup", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "documents")

	out, err = execute(t, dir, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, db.ReasonManual)

	_, err = execute(t, dir, "backup", "restore", "abc")
	assert.ErrorContains(t, err, "invalid backup id")

	_, err = execute(t, dir, "backup", "restore", "9999")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRenderLogShowsNotApplicable(t *testing.T) {
	view := store.FrontendView{
		LogData: []models.LogTableRow{{ID: uuid.New(), Date: "2024-03-01", Target: "M42", SubLength: 120}},
		CalibrationData: []models.CalibrationTableRow{{
			ID: uuid.New(), Camera: "ZWO ASI1600MM Pro", CalibrationType: models.CalibrationFlat,
		}},
		RowErrors: []*store.ProjectionError{{Kind: store.DanglingReference, SessionID: uuid.New(), LightFrameID: uuid.New()}},
	}

	out := renderLog(view, theme.DefaultStyles())
	assert.Contains(t, out, "Sessions (1)")
	assert.Contains(t, out, "M42")
	assert.Contains(t, out, "Calibration (1)")
	assert.Contains(t, out, models.NotApplicable)
	assert.Contains(t, out, "dangling_reference")
}

func TestRenderBackups(t *testing.T) {
	styles := theme.DefaultStyles()
	assert.Contains(t, renderBackups(nil, styles), "no backups")

	out := renderBackups([]db.Backup{{ID: 7, Reason: db.ReasonSaveState, CreatedAt: time.Now(), Documents: 5, Size: 2048}}, styles)
	assert.Contains(t, out, "7")
	assert.Contains(t, out, db.ReasonSaveState)
	assert.Contains(t, out, "2.0 kB")
}

func TestVerboseLoadConfig(t *testing.T) {
	opts := &options{configPath: filepath.Join(t.TempDir(), "missing.json"), dataDir: "/tmp/astro", verbose: true}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/astro", cfg.Storage.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.ToConsole)
}
