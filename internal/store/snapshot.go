package store

import (
	"github.com/google/uuid"

	"astrolog/internal/models"
)

// FrontendView is the read-only projection handed to the front end.
type FrontendView struct {
	Preferences     models.Preferences           `json:"preferences"`
	LogData         []models.LogTableRow         `json:"log_data"`
	CalibrationData []models.CalibrationTableRow `json:"calibration_data"`
	ImageList       []models.Image               `json:"image_list"`
	RowErrors       []*ProjectionError           `json:"row_errors"`
	CloseLock       bool                         `json:"close_lock"`
}

// SnapshotForFrontend builds the projection under one shared lock so every
// row is derived from the same state. Sessions whose light frame cannot be
// resolved are left out and reported in RowErrors.
func (s *Store) SnapshotForFrontend() FrontendView {
	var view FrontendView
	s.View(func(st *AppState) {
		view = Project(st)
	})
	return view
}

// Project derives the frontend view from st. It does not retain st.
func Project(st *AppState) FrontendView {
	names := st.EquipmentList.ViewNames()

	view := FrontendView{
		Preferences:     st.Preferences,
		LogData:         make([]models.LogTableRow, 0, len(st.ImagingSessionList)),
		CalibrationData: make([]models.CalibrationTableRow, 0, len(st.ImagingFrameList.CalibrationFrameList)),
		ImageList:       append([]models.Image{}, st.ImageList...),
		RowErrors:       []*ProjectionError{},
		CloseLock:       st.CloseLock,
	}

	frames := make(map[uuid.UUID]models.LightFrame, len(st.ImagingFrameList.LightFrameList))
	for _, f := range st.ImagingFrameList.LightFrameList {
		frames[f.ID] = f
	}

	for _, session := range st.ImagingSessionList {
		frame, ok := frames[session.LightFrameID]
		if !ok {
			view.RowErrors = append(view.RowErrors, &ProjectionError{
				Kind:         DanglingReference,
				SessionID:    session.ID,
				LightFrameID: session.LightFrameID,
			})
			continue
		}
		view.LogData = append(view.LogData, models.NewLogTableRow(frame, names))
	}

	for _, frame := range st.ImagingFrameList.CalibrationFrameList {
		view.CalibrationData = append(view.CalibrationData, models.NewCalibrationTableRow(frame, names))
	}

	return view
}
