package store

import (
	"encoding/json"
	"fmt"

	"astrolog/internal/config"
	"astrolog/internal/models"
)

// CollectionID names one persisted collection.
type CollectionID string

const (
	Preferences     CollectionID = "preferences"
	Equipment       CollectionID = "equipment"
	ImagingFrames   CollectionID = "imaging_frames"
	ImagingSessions CollectionID = "imaging_sessions"
	Images          CollectionID = "images"
)

// Collections lists every collection in load and save order.
func Collections() []CollectionID {
	return []CollectionID{Preferences, Equipment, ImagingFrames, ImagingSessions, Images}
}

// File returns the document file name for id.
func (id CollectionID) File() string {
	switch id {
	case Preferences:
		return config.PreferencesFile
	case Equipment:
		return config.EquipmentFile
	case ImagingFrames:
		return config.ImagingFramesFile
	case ImagingSessions:
		return config.ImagingSessionsFile
	case Images:
		return config.ImageListFile
	default:
		return string(id) + ".json"
	}
}

// ParseCollectionID converts s into a CollectionID.
func ParseCollectionID(s string) (CollectionID, error) {
	for _, id := range Collections() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("store: unknown collection %q", s)
}

// Paths maps each collection to the file it is stored in.
type Paths map[CollectionID]string

// PathsFor derives the document paths from a data layout.
func PathsFor(layout config.Layout) Paths {
	p := make(Paths, len(Collections()))
	for _, id := range Collections() {
		p[id] = layout.Path(id.File())
	}
	return p
}

// Collection is one decoded document. Exactly the field matching ID is set.
type Collection struct {
	ID          CollectionID
	Preferences *models.Preferences
	Equipment   *models.EquipmentList
	Frames      *models.ImagingFrameList
	Sessions    []models.ImagingSession
	Images      []models.Image
}

// apply installs c into st, replacing the previous value of its collection.
func (c *Collection) apply(st *AppState) {
	switch c.ID {
	case Preferences:
		st.Preferences = *c.Preferences
	case Equipment:
		st.EquipmentList = *c.Equipment
	case ImagingFrames:
		st.ImagingFrameList = *c.Frames
	case ImagingSessions:
		st.ImagingSessionList = c.Sessions
	case Images:
		st.ImageList = c.Images
	}
}

// decodeCollection parses the payload of a document for id.
func decodeCollection(id CollectionID, data []byte) (*Collection, error) {
	c := &Collection{ID: id}
	switch id {
	case Preferences:
		p := models.DefaultPreferences()
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		c.Preferences = &p
	case Equipment:
		l := models.NewEquipmentList()
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		l.Normalize()
		c.Equipment = &l
	case ImagingFrames:
		l := models.NewImagingFrameList()
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		l.Normalize()
		c.Frames = &l
	case ImagingSessions:
		var s []models.ImagingSession
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s == nil {
			s = []models.ImagingSession{}
		}
		c.Sessions = s
	case Images:
		var imgs []models.Image
		if err := json.Unmarshal(data, &imgs); err != nil {
			return nil, err
		}
		if imgs == nil {
			imgs = []models.Image{}
		}
		c.Images = imgs
	default:
		return nil, fmt.Errorf("unknown collection %q", id)
	}
	return c, nil
}

// payload returns the value of collection id inside st.
func payload(id CollectionID, st *AppState) (any, error) {
	switch id {
	case Preferences:
		return st.Preferences, nil
	case Equipment:
		return st.EquipmentList, nil
	case ImagingFrames:
		return st.ImagingFrameList, nil
	case ImagingSessions:
		return st.ImagingSessionList, nil
	case Images:
		return st.ImageList, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", id)
	}
}
