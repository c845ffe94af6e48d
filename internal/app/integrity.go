package app

import (
	"github.com/google/uuid"

	"astrolog/internal/store"
)

// MissingReference is an id that names nothing in its target collection.
type MissingReference struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	Field    string    `json:"field"`
	TargetID uuid.UUID `json:"target_id"`
}

// IntegrityReport lists the dangling references found in the state.
type IntegrityReport struct {
	DanglingSessions   []*store.ProjectionError `json:"dangling_sessions"`
	MissingCalibration []MissingReference       `json:"missing_calibration"`
	MissingEquipment   []MissingReference       `json:"missing_equipment"`
}

// OK reports whether nothing was found.
func (r IntegrityReport) OK() bool { return r.Problems() == 0 }

// Problems counts every finding.
func (r IntegrityReport) Problems() int {
	return len(r.DanglingSessions) + len(r.MissingCalibration) + len(r.MissingEquipment)
}

// CheckIntegrity scans the state for references that cannot be resolved and
// logs each one. Nothing is repaired: the projection already skips dangling
// sessions and renders unknown equipment as empty.
func (a *App) CheckIntegrity() IntegrityReport {
	report := IntegrityReport{
		DanglingSessions:   []*store.ProjectionError{},
		MissingCalibration: []MissingReference{},
		MissingEquipment:   []MissingReference{},
	}
	if a.store == nil {
		return report
	}

	a.store.View(func(st *store.AppState) {
		report.DanglingSessions = store.Project(st).RowErrors

		calibration := make(map[uuid.UUID]bool, len(st.ImagingFrameList.CalibrationFrameList))
		for _, f := range st.ImagingFrameList.CalibrationFrameList {
			calibration[f.ID] = true
		}
		for _, s := range st.ImagingSessionList {
			for _, cid := range s.CalibrationFrameIDs {
				if !calibration[cid] {
					report.MissingCalibration = append(report.MissingCalibration,
						MissingReference{OwnerID: s.ID, Field: "calibration_frame_ids", TargetID: cid})
				}
			}
		}

		names := st.EquipmentList.ViewNames()
		check := func(owner uuid.UUID, field string, id uuid.UUID) {
			if id == uuid.Nil {
				return
			}
			if _, ok := names[id]; !ok {
				report.MissingEquipment = append(report.MissingEquipment,
					MissingReference{OwnerID: owner, Field: field, TargetID: id})
			}
		}
		for _, f := range st.ImagingFrameList.LightFrameList {
			check(f.ID, "telescope_id", f.TelescopeID)
			check(f.ID, "flattener_id", f.FlattenerID)
			check(f.ID, "mount_id", f.MountID)
			check(f.ID, "camera_id", f.CameraID)
			check(f.ID, "filter_id", f.FilterID)
		}
		for _, f := range st.ImagingFrameList.CalibrationFrameList {
			check(f.ID, "camera_id", f.CameraID)
		}
	})

	if a.logs != nil {
		for _, e := range report.DanglingSessions {
			a.logs.System.Warn("app: integrity: %v", e)
		}
		for _, m := range report.MissingCalibration {
			a.logs.System.Warn("app: integrity: session %s references unknown calibration frame %s", m.OwnerID, m.TargetID)
		}
		for _, m := range report.MissingEquipment {
			a.logs.System.Warn("app: integrity: frame %s %s references unknown equipment %s", m.OwnerID, m.Field, m.TargetID)
		}
	}
	return report
}
