package process

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	name string
	args []string
}

func recorder(calls *[]recorded, err error) RunFunc {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recorded{name: name, args: args})
		return []byte("boom"), err
	}
}

func TestCommandPerOS(t *testing.T) {
	name, args := Command("darwin", "/tmp/x")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"/tmp/x"}, args)

	name, args = Command("windows", `C:\x`)
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", `C:\x`}, args)

	name, _ = Command("linux", "/tmp/x")
	assert.Equal(t, "xdg-open", name)
}

func TestOpenExistingPath(t *testing.T) {
	dir := t.TempDir()
	var calls []recorded
	o := NewOpenerWith("linux", recorder(&calls, nil))

	require.NoError(t, o.Open(context.Background(), dir))
	require.Len(t, calls, 1)
	assert.Equal(t, "xdg-open", calls[0].name)
	assert.Equal(t, []string{dir}, calls[0].args)
}

func TestOpenURLSkipsStat(t *testing.T) {
	var calls []recorded
	o := NewOpenerWith("darwin", recorder(&calls, nil))
	require.NoError(t, o.Open(context.Background(), "http://127.0.0.1:8743"))
	assert.Len(t, calls, 1)
}

func TestOpenMissingPath(t *testing.T) {
	var calls []recorded
	o := NewOpenerWith("linux", recorder(&calls, nil))

	err := o.Open(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, calls)
}

func TestOpenEmptyTarget(t *testing.T) {
	o := NewOpenerWith("linux", nil)
	assert.ErrorIs(t, o.Open(context.Background(), "  "), ErrEmptyTarget)
}

func TestOpenHandlerFailure(t *testing.T) {
	var calls []recorded
	failure := errors.New("handler missing")
	o := NewOpenerWith("linux", recorder(&calls, failure))

	err := o.Open(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, failure)
}

func TestOpenAsyncReportsErrors(t *testing.T) {
	o := NewOpenerWith("linux", nil)
	got := make(chan error, 1)
	o.OpenAsync(context.Background(), "", func(err error) { got <- err })

	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrEmptyTarget)
	case <-time.After(time.Second):
		t.Fatal("error callback not called")
	}
}
