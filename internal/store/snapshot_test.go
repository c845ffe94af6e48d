package store

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolog/internal/models"
)

func TestSnapshotResolvesEquipmentNames(t *testing.T) {
	st := sampleState()
	s := seeded(t, nil, st)

	view := s.SnapshotForFrontend()
	require.Len(t, view.LogData, 1)
	row := view.LogData[0]
	assert.Equal(t, st.ImagingFrameList.LightFrameList[0].ID, row.ID)
	assert.Equal(t, "Sky-Watcher Esprit 100ED", row.Telescope)
	assert.Equal(t, "ZWO ASI1600MM Pro", row.Camera)
	assert.Empty(t, row.Mount, "unset equipment ids render empty")
	assert.Empty(t, view.RowErrors)
	assert.Equal(t, st.ImageList, view.ImageList)
}

func TestSnapshotCalibrationRows(t *testing.T) {
	s := seeded(t, nil, sampleState())
	view := s.SnapshotForFrontend()
	require.Len(t, view.CalibrationData, 2)

	dark, flat := view.CalibrationData[0], view.CalibrationData[1]
	assert.Equal(t, models.CalibrationDark, dark.CalibrationType)
	assert.Equal(t, models.Of(120), dark.SubLength)
	assert.Equal(t, models.Of(-10), dark.CameraTemp)

	assert.Equal(t, models.CalibrationFlat, flat.CalibrationType)
	assert.False(t, flat.SubLength.Valid)

	data, err := json.Marshal(flat)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sub_length":"N/A"`)
	assert.Contains(t, string(data), `"camera_temp":"N/A"`)
}

func TestSnapshotSkipsDanglingSessions(t *testing.T) {
	paths := testPaths(t)
	lightID, sessionID := uuid.New(), uuid.New()

	docs := map[CollectionID]string{
		Equipment:       `[]`,
		ImagingFrames:   `{"light_frame_list": [], "calibration_frame_list": []}`,
		ImagingSessions: fmt.Sprintf(`[{"id": "%s", "light_frame_id": "%s", "folder_dir": "/a"}]`, sessionID, lightID),
	}
	require.NoError(t, os.MkdirAll(testDir(paths), 0o755))
	for id, body := range docs {
		require.NoError(t, os.WriteFile(paths[id], []byte(body), 0o644))
	}

	s, failures := Open(paths, nil)
	var equipmentFailed bool
	for _, f := range failures {
		if f.Collection == Equipment {
			equipmentFailed = true
			assert.Equal(t, LoadParse, f.Kind)
		}
	}
	assert.True(t, equipmentFailed, "a list is not an equipment document")

	view := s.SnapshotForFrontend()
	assert.Empty(t, view.LogData)
	require.Len(t, view.RowErrors, 1)
	assert.Equal(t, DanglingReference, view.RowErrors[0].Kind)
	assert.Equal(t, sessionID, view.RowErrors[0].SessionID)
	assert.Equal(t, lightID, view.RowErrors[0].LightFrameID)
}

func TestSnapshotOfEmptyStoreHasNoNulls(t *testing.T) {
	view := New(nil, nil).SnapshotForFrontend()
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.Contains(t, string(data), `"close_lock":false`)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := seeded(t, nil, sampleState())
	view := s.SnapshotForFrontend()
	view.ImageList[0].Title = "edited"

	s.View(func(st *AppState) {
		assert.Equal(t, "M42", st.ImageList[0].Title)
	})
}

func TestUnknownCalibrationVariantSurvivesSave(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(testDir(paths), 0o755))
	frameID := uuid.New()
	doc := fmt.Sprintf(`{"light_frame_list": [], "calibration_frame_list": [{"type":"dark_flat","id":"%s","gain":100,"exposure":2.5}]}`, frameID)
	require.NoError(t, os.WriteFile(paths[ImagingFrames], []byte(doc), 0o644))

	s := New(paths, nil)
	require.NoError(t, s.Load(ImagingFrames, paths[ImagingFrames]))

	view := s.SnapshotForFrontend()
	require.Len(t, view.CalibrationData, 1)
	assert.Equal(t, models.CalibrationKind("dark_flat"), view.CalibrationData[0].CalibrationType)
	assert.False(t, view.CalibrationData[0].SubLength.Valid)

	require.NoError(t, s.Save(ImagingFrames, paths[ImagingFrames]))
	data, err := os.ReadFile(paths[ImagingFrames])
	require.NoError(t, err)
	assert.Regexp(t, `"exposure":\s*2.5`, string(data))
}
