package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolog/internal/app"
	"astrolog/internal/config"
	"astrolog/internal/models"
	"astrolog/internal/store"
)

func newTestServer(t *testing.T) (*Server, *app.App, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()

	a := app.New()
	require.NoError(t, a.Open(context.Background(), &cfg))

	s := New(a)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.ForceStop(context.Background())
		ts.Close()
		a.Close()
	})
	return s, a, ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetView(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/view", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[map[string]any](t, resp)
	for _, key := range []string{"preferences", "log_data", "calibration_data", "image_list", "row_errors", "close_lock"} {
		assert.Contains(t, view, key)
	}
	assert.Equal(t, []any{}, view["log_data"])
}

func TestSavePreferences(t *testing.T) {
	_, a, ts := newTestServer(t)
	prefs := models.Preferences{License: models.License{UserEmail: "observer@example.com"}}

	resp := do(t, http.MethodPut, ts.URL+"/api/preferences", prefs)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view, err := a.FrontendView()
	require.NoError(t, err)
	assert.Equal(t, prefs, view.Preferences)
}

func TestSavePreferencesValidationIs400(t *testing.T) {
	_, _, ts := newTestServer(t)
	prefs := models.Preferences{License: models.License{UserEmail: "nope"}}

	resp := do(t, http.MethodPut, ts.URL+"/api/preferences", prefs)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorBody](t, resp)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "email", body.Fields[0].Rule)
}

func TestMalformedBodyIs400(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/images", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddEquipment(t *testing.T) {
	_, _, ts := newTestServer(t)
	body := map[string]any{"brand": "ZWO", "name": "ASI294MC", "chip_size": "4/3", "mega_pixel": 11.7, "rgb": true}

	resp := do(t, http.MethodPost, ts.URL+"/api/equipment/camera", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cam := decode[models.Camera](t, resp)
	assert.NotEqual(t, uuid.Nil, cam.ID)
	assert.True(t, cam.RGB)

	resp = do(t, http.MethodPost, ts.URL+"/api/equipment/camera", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/equipment/dewshield", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/equipment/telescope", map[string]any{"brand": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddImage(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/images", models.Image{Title: "M42", Path: "/m42.tif"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	img := decode[models.Image](t, resp)
	assert.Equal(t, "M42", img.Title)

	resp = do(t, http.MethodGet, ts.URL+"/api/view", nil)
	view := decode[store.FrontendView](t, resp)
	assert.Equal(t, []models.Image{img}, view.ImageList)
}

func TestAddImageDuplicateIDIs409(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/images", models.Image{Title: "M42", Path: "/m42.tif"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	img := decode[models.Image](t, resp)

	resp = do(t, http.MethodPost, ts.URL+"/api/images", models.Image{ID: img.ID, Title: "M43", Path: "/m43.tif"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[errorBody](t, resp)
	assert.Contains(t, body.Error, app.ErrDuplicateID.Error())
}

func TestSaveStateDuplicateIDIs409(t *testing.T) {
	_, _, ts := newTestServer(t)
	id := uuid.New()
	images := []models.Image{{ID: id, Title: "a", Path: "/a"}, {ID: id, Title: "b", Path: "/b"}}

	resp := do(t, http.MethodPut, ts.URL+"/api/state", app.StateUpdate{ImageList: &images})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestEncodeFailureIsLogged(t *testing.T) {
	s, a, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.jsonOK(rec, map[string]any{"bad": make(chan int)})

	data, err := os.ReadFile(filepath.Join(a.Logs().Dir(), "web.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "web: encode response")
}

func TestSaveState(t *testing.T) {
	_, a, ts := newTestServer(t)
	images := []models.Image{{ID: uuid.New(), Title: "M31", Path: "/m31.tif"}}

	resp := do(t, http.MethodPut, ts.URL+"/api/state", app.StateUpdate{ImageList: &images})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[saveReportDTO](t, resp)
	assert.Equal(t, store.Collections(), report.Saved)
	assert.Empty(t, report.Failed)

	c, err := store.LoadCollection(store.Images, a.Layout().Path(config.ImageListFile))
	require.NoError(t, err)
	assert.Equal(t, images, c.Images)
}

func TestRenameSession(t *testing.T) {
	_, a, ts := newTestServer(t)
	root := t.TempDir()
	folder := filepath.Join(root, "raw")
	require.NoError(t, os.Mkdir(folder, 0o755))

	session := models.ImagingSession{ID: uuid.New(), LightFrameID: uuid.New(), FolderDir: folder}
	require.NoError(t, a.Store().Mutate(func(st *store.AppState) error {
		st.ImagingSessionList = append(st.ImagingSessionList, session)
		return nil
	}))

	resp := do(t, http.MethodPost, ts.URL+"/api/sessions/"+session.ID.String()+"/rename", map[string]string{"destination": "done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.ImagingSession](t, resp)
	assert.Equal(t, filepath.Join(root, "done"), got.FolderDir)

	resp = do(t, http.MethodPost, ts.URL+"/api/sessions/"+uuid.NewString()+"/rename", map[string]string{"destination": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/sessions/not-a-uuid/rename", map[string]string{"destination": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpenMissingPathIs404(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/open", map[string]string{"path": filepath.Join(t.TempDir(), "missing")})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/open", map[string]string{"path": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCloseLockBlocksStop(t *testing.T) {
	s, a, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/close-lock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, a.CloseLocked())
	assert.ErrorIs(t, s.Stop(context.Background()), app.ErrCloseLocked)

	resp = do(t, http.MethodDelete, ts.URL+"/api/close-lock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, a.CloseLocked())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestBackups(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/images", models.Image{Title: "first", Path: "/a.tif"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[models.Image](t, resp)

	resp = do(t, http.MethodPost, ts.URL+"/api/backups", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[backupDTO](t, resp)
	assert.Equal(t, 1, b.Documents)
	assert.NotEmpty(t, b.SizeHuman)

	resp = do(t, http.MethodPost, ts.URL+"/api/images", models.Image{Title: "second", Path: "/b.tif"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, fmt.Sprintf("%s/api/backups/%d/restore", ts.URL, b.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[store.FrontendView](t, resp)
	assert.Equal(t, []models.Image{first}, view.ImageList)

	resp = do(t, http.MethodGet, ts.URL+"/api/backups", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]backupDTO](t, resp)
	assert.Len(t, list, 2)

	resp = do(t, http.MethodPost, ts.URL+"/api/backups/999/restore", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/backups/abc/restore", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsStream(t *testing.T) {
	_, a, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	waitFor := func(want string) {
		t.Helper()
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream ended before %q", want)
				if line == want {
					return
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}

	waitFor("event: connected")
	require.NoError(t, a.AddCloseLock())
	waitFor("event: close_lock")
	waitFor(`data: {"close_lock":true}`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("wrap: %w", app.ErrCloseLocked)))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("wrap: %w", app.ErrDuplicateID)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(app.ErrBackupsDisabled))
	assert.Equal(t, http.StatusBadRequest, statusFor(&models.ValidationError{}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("disk full")))
}
