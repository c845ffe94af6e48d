package models

import "github.com/google/uuid"

// ImagingSession ties one light frame to the folder holding its data and to
// the calibration frames applied to it.
type ImagingSession struct {
	ID                  uuid.UUID   `json:"id"`
	LightFrameID        uuid.UUID   `json:"light_frame_id"`
	FolderDir           string      `json:"folder_dir"`
	CalibrationFrameIDs []uuid.UUID `json:"calibration_frame_ids"`
}

// CloneSessions returns a deep copy of sessions.
func CloneSessions(sessions []ImagingSession) []ImagingSession {
	out := make([]ImagingSession, len(sessions))
	for i, s := range sessions {
		s.CalibrationFrameIDs = append([]uuid.UUID{}, s.CalibrationFrameIDs...)
		out[i] = s
	}
	return out
}
