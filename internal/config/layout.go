package config

import "path/filepath"

// HiddenDirName is the folder, under the data directory, that holds every
// file astrolog owns.
const HiddenDirName = ".astrolog"

// Document file names inside the hidden directory.
const (
	PreferencesFile     = "preferences.json"
	EquipmentFile       = "equipment.json"
	ImagingFramesFile   = "imagingFrames.json"
	ImagingSessionsFile = "imagingSessions.json"
	ImageListFile       = "imageList.json"
	BackupDBFile        = "backup.db"
)

// Layout derives every on-disk location from the data directory:
//
//	<data_dir>/.astrolog/preferences.json
//	<data_dir>/.astrolog/equipment.json
//	<data_dir>/.astrolog/imagingFrames.json
//	<data_dir>/.astrolog/imagingSessions.json
//	<data_dir>/.astrolog/imageList.json
//	<data_dir>/.astrolog/backup.db
//	<data_dir>/.astrolog/logs/
type Layout struct {
	DataDir string
}

// NewLayout returns the layout rooted at dataDir.
func NewLayout(dataDir string) Layout {
	return Layout{DataDir: dataDir}
}

// Dir is the hidden directory holding the documents.
func (l Layout) Dir() string { return filepath.Join(l.DataDir, HiddenDirName) }

// LogDir is where log files are written.
func (l Layout) LogDir() string { return filepath.Join(l.Dir(), "logs") }

// BackupDB is the path of the backup journal.
func (l Layout) BackupDB() string { return filepath.Join(l.Dir(), BackupDBFile) }

// Path joins a document file name onto the hidden directory.
func (l Layout) Path(file string) string { return filepath.Join(l.Dir(), file) }
