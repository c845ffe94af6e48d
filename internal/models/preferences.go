package models

// StoragePreferences holds the directories the application reads from and
// writes imaging data to.
type StoragePreferences struct {
	RootDirectory   string `json:"root_directory"`
	BackupDirectory string `json:"backup_directory"`
	SourceDirectory string `json:"source_directory"`
}

// License mirrors the activation details entered by the user. Verification
// happens elsewhere; the store only keeps the values.
type License struct {
	Activated  bool   `json:"activated"`
	UserEmail  string `json:"user_email" validate:"omitempty,email"`
	LicenseKey string `json:"license_key"`
}

// Preferences is the singleton user configuration. It is replaced wholesale
// on save.
type Preferences struct {
	Storage StoragePreferences `json:"storage"`
	License License            `json:"license"`
}

// DefaultPreferences returns the preferences used when no document could be
// loaded.
func DefaultPreferences() Preferences {
	return Preferences{}
}
