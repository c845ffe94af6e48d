// Package files holds the filesystem operations astrolog performs on the
// user's imaging folders.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDestinationNotEmpty is returned when a rename target already holds
// something that would be lost.
var ErrDestinationNotEmpty = errors.New("destination is not empty")

// IsDirEmpty reports whether the directory at path has no entries.
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// RenameDir moves the directory src to dst. dst may be missing or an empty
// directory, which is replaced. Anything else at dst is left untouched and
// ErrDestinationNotEmpty is returned.
func RenameDir(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("files: rename %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("files: rename %s: not a directory", src)
	}
	if src == dst {
		return nil
	}

	dstInfo, err := os.Stat(dst)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("files: rename %s: create parent: %w", src, err)
		}
	case err != nil:
		return fmt.Errorf("files: rename %s: stat %s: %w", src, dst, err)
	case !dstInfo.IsDir():
		return fmt.Errorf("files: rename %s to %s: %w", src, dst, ErrDestinationNotEmpty)
	default:
		empty, err := IsDirEmpty(dst)
		if err != nil {
			return fmt.Errorf("files: rename %s: read %s: %w", src, dst, err)
		}
		if !empty {
			return fmt.Errorf("files: rename %s to %s: %w", src, dst, ErrDestinationNotEmpty)
		}
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("files: rename %s: remove %s: %w", src, dst, err)
		}
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("files: rename %s to %s: %w", src, dst, err)
	}
	return nil
}
