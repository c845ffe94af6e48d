package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"astrolog/internal/config"
)

// EnsureHiddenDir creates the astrolog folder under root and marks it
// hidden. It returns the folder's path.
func EnsureHiddenDir(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("files: hidden dir: empty root")
	}
	dir := filepath.Join(root, config.HiddenDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("files: hidden dir: %w", err)
	}
	if err := hide(dir); err != nil {
		return "", fmt.Errorf("files: hide %s: %w", dir, err)
	}
	return dir, nil
}
