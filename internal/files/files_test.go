package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirWithFile(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light_001.fits"), []byte("data"), 0o644))
}

func TestRenameDirToMissingDestination(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "old")
	dst := filepath.Join(root, "nested", "new")
	mkdirWithFile(t, src)

	require.NoError(t, RenameDir(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dst, "light_001.fits"))
	assert.NoError(t, err)
}

func TestRenameDirReplacesEmptyDestination(t *testing.T) {
	root := t.TempDir()
	src, dst := filepath.Join(root, "old"), filepath.Join(root, "new")
	mkdirWithFile(t, src)
	require.NoError(t, os.Mkdir(dst, 0o755))

	require.NoError(t, RenameDir(src, dst))
	_, err := os.Stat(filepath.Join(dst, "light_001.fits"))
	assert.NoError(t, err)
}

func TestRenameDirRefusesNonEmptyDestination(t *testing.T) {
	root := t.TempDir()
	src, dst := filepath.Join(root, "old"), filepath.Join(root, "new")
	mkdirWithFile(t, src)
	mkdirWithFile(t, dst)

	err := RenameDir(src, dst)
	assert.ErrorIs(t, err, ErrDestinationNotEmpty)
	_, statErr := os.Stat(filepath.Join(src, "light_001.fits"))
	assert.NoError(t, statErr, "source must be untouched")
}

func TestRenameDirRefusesFileDestination(t *testing.T) {
	root := t.TempDir()
	src, dst := filepath.Join(root, "old"), filepath.Join(root, "new")
	mkdirWithFile(t, src)
	require.NoError(t, os.WriteFile(dst, nil, 0o644))

	assert.ErrorIs(t, RenameDir(src, dst), ErrDestinationNotEmpty)
}

func TestRenameDirMissingSource(t *testing.T) {
	root := t.TempDir()
	err := RenameDir(filepath.Join(root, "nope"), filepath.Join(root, "new"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenameDirSamePath(t *testing.T) {
	src := filepath.Join(t.TempDir(), "old")
	mkdirWithFile(t, src)
	assert.NoError(t, RenameDir(src, src+string(filepath.Separator)))
}

func TestIsDirEmpty(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsDirEmpty(dir)
	require.NoError(t, err)
	assert.True(t, empty)

	mkdirWithFile(t, dir)
	empty, err = IsDirEmpty(dir)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestEnsureHiddenDir(t *testing.T) {
	root := t.TempDir()
	dir, err := EnsureHiddenDir(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".astrolog"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = EnsureHiddenDir(root)
	assert.NoError(t, err, "existing folder is fine")

	_, err = EnsureHiddenDir("  ")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"M42 Orion Nebula", "m42-orion-nebula"},
		{"  NGC 7000 -- North America  ", "ngc-7000-north-america"},
		{"Ha/OIII", "ha-oiii"},
		{"???", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}

	long := Slugify(strings.Repeat("a", 49) + " b")
	assert.LessOrEqual(t, len(long), 50)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestSessionFolderName(t *testing.T) {
	assert.Equal(t, "2024-03-01_m42", SessionFolderName("2024-03-01", "M42"))
	assert.Equal(t, "m31", SessionFolderName("", "M31"))
}
