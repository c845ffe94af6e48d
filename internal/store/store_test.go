package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolog/internal/config"
	"astrolog/internal/models"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	return PathsFor(config.NewLayout(t.TempDir()))
}

func TestAcquireReadDoesNotBlockOtherReaders(t *testing.T) {
	s := New(nil, nil)
	first := s.AcquireRead()
	defer first.Release()

	done := make(chan struct{})
	go func() {
		second := s.AcquireRead()
		second.Release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked behind first reader")
	}
}

func TestAcquireWriteWaitsForReaders(t *testing.T) {
	s := New(nil, nil)
	reader := s.AcquireRead()

	acquired := make(chan struct{})
	go func() {
		w := s.AcquireWrite()
		close(acquired)
		w.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while a reader held the store")
	case <-time.After(50 * time.Millisecond):
	}

	reader.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired after reader released")
	}
}

func TestAcquireWriteExcludesWriters(t *testing.T) {
	s := New(nil, nil)
	first := s.AcquireWrite()

	acquired := make(chan struct{})
	go func() {
		w := s.AcquireWrite()
		close(acquired)
		w.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired while first held the store")
	case <-time.After(50 * time.Millisecond):
	}
	first.Release()
	<-acquired
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := New(nil, nil)
	r := s.AcquireRead()
	r.Release()
	r.Release()

	w := s.AcquireWrite()
	w.Release()
	assert.NotPanics(t, w.Release)
}

func TestConcurrentMutateLosesNoUpdates(t *testing.T) {
	s := New(nil, nil)
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Mutate(func(st *AppState) error {
				st.ImageList = append(st.ImageList, models.Image{
					ID:    uuid.New(),
					Title: fmt.Sprintf("image-%d", i),
					Path:  fmt.Sprintf("/img/%d.tif", i),
				})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s.View(func(st *AppState) {
		require.Len(t, st.ImageList, n)
		seen := make(map[string]bool, n)
		for _, img := range st.ImageList {
			assert.False(t, seen[img.Title], "duplicate %s", img.Title)
			seen[img.Title] = true
		}
	})
}

func TestMutateErrorLeavesStateUnchanged(t *testing.T) {
	s := New(nil, nil)
	err := s.Mutate(func(st *AppState) error {
		st.ImageList = append(st.ImageList, models.Image{ID: uuid.New(), Title: "half"})
		st.Preferences.Storage.RootDirectory = "/changed"
		return fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")

	s.View(func(st *AppState) {
		assert.Empty(t, st.ImageList)
		assert.Empty(t, st.Preferences.Storage.RootDirectory)
	})
}

func TestMutateReleasesLockOnPanic(t *testing.T) {
	s := New(nil, nil)
	assert.Panics(t, func() {
		_ = s.Mutate(func(st *AppState) error { panic("programmer error") })
	})

	done := make(chan struct{})
	go func() {
		s.View(func(*AppState) {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store still locked after a panicking mutation")
	}
}

func testDir(paths Paths) string {
	return filepath.Dir(paths[Preferences])
}
