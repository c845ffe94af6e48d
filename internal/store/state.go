// Package store holds the canonical in-memory copy of every astrolog
// collection, serialises access to it and persists it as independent JSON
// documents.
package store

import "astrolog/internal/models"

// AppState is the aggregate guarded by a Store. It is only ever touched
// through a handle or a scoped closure.
type AppState struct {
	Preferences        models.Preferences
	EquipmentList      models.EquipmentList
	ImagingFrameList   models.ImagingFrameList
	ImagingSessionList []models.ImagingSession
	ImageList          []models.Image

	// CloseLock blocks the front end from closing while set. Never persisted.
	CloseLock bool
}

// NewAppState returns the state used when nothing could be loaded.
func NewAppState() AppState {
	return AppState{
		Preferences:        models.DefaultPreferences(),
		EquipmentList:      models.NewEquipmentList(),
		ImagingFrameList:   models.NewImagingFrameList(),
		ImagingSessionList: []models.ImagingSession{},
		ImageList:          []models.Image{},
	}
}

// Clone returns a deep copy of st.
func (st *AppState) Clone() AppState {
	return AppState{
		Preferences:        st.Preferences,
		EquipmentList:      st.EquipmentList.Clone(),
		ImagingFrameList:   st.ImagingFrameList.Clone(),
		ImagingSessionList: models.CloneSessions(st.ImagingSessionList),
		ImageList:          append([]models.Image{}, st.ImageList...),
		CloseLock:          st.CloseLock,
	}
}
