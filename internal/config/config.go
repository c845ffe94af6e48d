package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save policies for whole-state saves.
const (
	PolicyBestEffort   = "best_effort"
	PolicyAbortOnFirst = "abort_on_first"
)

// StorageConfig locates the JSON documents.
type StorageConfig struct {
	DataDir string `json:"data_dir"`
}

// SaveConfig controls whole-state saves.
type SaveConfig struct {
	Policy string `json:"policy"`
}

// BackupConfig controls the backup journal.
type BackupConfig struct {
	Enabled bool `json:"enabled"`
	Keep    int  `json:"keep"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Port int `json:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `json:"level"`
	ToConsole  bool   `json:"to_console"`
	RotationMB int    `json:"rotation_mb"`
}

// Config is the top-level configuration for astrolog.
// Stored as config.json in the user config directory.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Save    SaveConfig    `json:"save"`
	Backup  BackupConfig  `json:"backup"`
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
}

// DefaultDataDir is used when no data directory is configured.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".astrolog-data"
	}
	return filepath.Join(home, "astrolog")
}

// DefaultPath returns the location of config.json.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".astrolog", "config.json")
	}
	return filepath.Join(dir, "astrolog", "config.json")
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			DataDir: DefaultDataDir(),
		},
		Save: SaveConfig{
			Policy: PolicyBestEffort,
		},
		Backup: BackupConfig{
			Enabled: true,
			Keep:    20,
		},
		Server: ServerConfig{
			Port: 8743,
		},
		Logging: LoggingConfig{
			Level:      "info",
			ToConsole:  false,
			RotationMB: 10,
		},
	}
}

// Load reads a config from the JSON file at path and merges it with defaults
// so that any missing fields receive their default values. If the file does
// not exist, a fully-default Config is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadJSON(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	EnsureDefaults(&cfg)
	cfg.Storage.DataDir = ExpandHome(cfg.Storage.DataDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to path as indented JSON. Parent directories are
// created if they do not already exist.
func Save(cfg *Config, path string) error {
	if err := saveJSON(path, cfg, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// isValidLogLevel reports whether s is an acceptable logging.level value.
func isValidLogLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Validate checks cfg for constraint violations and returns a combined error
// describing every problem found, or nil if the config is valid.
func Validate(cfg *Config) error {
	var errs []string

	if !isValidLogLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level))
	}

	if cfg.Logging.RotationMB < 1 {
		errs = append(errs, fmt.Sprintf("logging.rotation_mb must be >= 1; got %d", cfg.Logging.RotationMB))
	}

	if cfg.Save.Policy != PolicyBestEffort && cfg.Save.Policy != PolicyAbortOnFirst {
		errs = append(errs, fmt.Sprintf("save.policy must be %q or %q; got %q", PolicyBestEffort, PolicyAbortOnFirst, cfg.Save.Policy))
	}

	if cfg.Backup.Keep < 0 {
		errs = append(errs, fmt.Sprintf("backup.keep must be >= 0; got %d", cfg.Backup.Keep))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be in 1-65535; got %d", cfg.Server.Port))
	}

	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		errs = append(errs, "storage.data_dir must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return nil
}

// EnsureDefaults fills in zero-value string fields in cfg with their default
// values. Numeric fields are left alone: Load already unmarshals on top of
// DefaultConfig so missing JSON fields receive defaults automatically.
func EnsureDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = d.Storage.DataDir
	}

	if cfg.Save.Policy == "" {
		cfg.Save.Policy = d.Save.Policy
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
