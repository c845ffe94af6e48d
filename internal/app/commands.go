package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"astrolog/internal/db"
	"astrolog/internal/files"
	"astrolog/internal/models"
	"astrolog/internal/store"
)

// Command errors.
var (
	ErrDuplicateEquipment = errors.New("equipment with this name already exists")
	ErrDuplicateID        = errors.New("id already exists")
	ErrSessionNotFound    = errors.New("imaging session not found")
)

// FrontendView returns a consistent projection of the current state.
func (a *App) FrontendView() (store.FrontendView, error) {
	if err := a.requireOpen(); err != nil {
		return store.FrontendView{}, err
	}
	return a.store.SnapshotForFrontend(), nil
}

// SavePreferences validates p, replaces the stored preferences and persists
// them. The astrolog folder is created under the new root directory first.
func (a *App) SavePreferences(ctx context.Context, p models.Preferences) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if err := models.Validate(p); err != nil {
		return err
	}

	if root := strings.TrimSpace(p.Storage.RootDirectory); root != "" {
		if _, err := files.EnsureHiddenDir(root); err != nil {
			return fmt.Errorf("app: save preferences: %w", err)
		}
	}

	err := a.store.MutateAndSave(func(st *store.AppState) error {
		st.Preferences = p
		return nil
	}, store.Preferences)
	if err != nil {
		return fmt.Errorf("app: save preferences: %w", err)
	}

	a.logs.System.Info("app: preferences saved")
	a.notify(EventStateUpdated, store.Preferences)
	return nil
}

// StateUpdate carries the collections a whole-state save replaces. Nil
// fields keep their current value.
type StateUpdate struct {
	Preferences        *models.Preferences      `json:"preferences,omitempty"`
	EquipmentList      *models.EquipmentList    `json:"equipment_list,omitempty"`
	ImagingFrameList   *models.ImagingFrameList `json:"imaging_frame_list,omitempty"`
	ImagingSessionList *[]models.ImagingSession `json:"imaging_session_list,omitempty"`
	ImageList          *[]models.Image          `json:"image_list,omitempty"`
}

// uniqueIDs returns ErrDuplicateID for the first id that appears twice.
func uniqueIDs(what string, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("app: %s %s: %w", what, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (u StateUpdate) validate() error {
	if u.Preferences != nil {
		if err := models.Validate(*u.Preferences); err != nil {
			return err
		}
	}

	if u.EquipmentList != nil {
		l := u.EquipmentList.Clone()
		for _, item := range l.Items() {
			if err := models.Validate(item); err != nil {
				return err
			}
		}
		bases := l.Bases()
		ids := make([]uuid.UUID, 0, len(bases))
		for _, b := range bases {
			ids = append(ids, b.ID)
		}
		if err := uniqueIDs("equipment", ids); err != nil {
			return err
		}
	}

	if u.ImagingFrameList != nil {
		lights := make([]uuid.UUID, 0, len(u.ImagingFrameList.LightFrameList))
		for _, f := range u.ImagingFrameList.LightFrameList {
			lights = append(lights, f.ID)
		}
		if err := uniqueIDs("light frame", lights); err != nil {
			return err
		}
		calibration := make([]uuid.UUID, 0, len(u.ImagingFrameList.CalibrationFrameList))
		for _, f := range u.ImagingFrameList.CalibrationFrameList {
			calibration = append(calibration, f.ID)
		}
		if err := uniqueIDs("calibration frame", calibration); err != nil {
			return err
		}
	}

	if u.ImagingSessionList != nil {
		ids := make([]uuid.UUID, 0, len(*u.ImagingSessionList))
		for _, s := range *u.ImagingSessionList {
			ids = append(ids, s.ID)
		}
		if err := uniqueIDs("imaging session", ids); err != nil {
			return err
		}
	}

	if u.ImageList != nil {
		ids := make([]uuid.UUID, 0, len(*u.ImageList))
		for _, img := range *u.ImageList {
			if err := models.Validate(img); err != nil {
				return err
			}
			ids = append(ids, img.ID)
		}
		if err := uniqueIDs("image", ids); err != nil {
			return err
		}
	}
	return nil
}

func (u StateUpdate) apply(st *store.AppState) {
	if u.Preferences != nil {
		st.Preferences = *u.Preferences
	}
	if u.EquipmentList != nil {
		l := u.EquipmentList.Clone()
		l.Normalize()
		st.EquipmentList = l
	}
	if u.ImagingFrameList != nil {
		l := u.ImagingFrameList.Clone()
		l.Normalize()
		st.ImagingFrameList = l
	}
	if u.ImagingSessionList != nil {
		st.ImagingSessionList = models.CloneSessions(*u.ImagingSessionList)
	}
	if u.ImageList != nil {
		st.ImageList = append([]models.Image{}, (*u.ImageList)...)
	}
}

// SaveState merges update into the state, records the previous documents in
// the backup journal and writes every collection with the configured save
// policy. The report is returned even when some collections failed; the
// error is then non-nil.
func (a *App) SaveState(ctx context.Context, update StateUpdate) (*store.SaveReport, error) {
	if err := a.requireOpen(); err != nil {
		return nil, err
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	if a.db != nil {
		if _, err := a.Backup(ctx, db.ReasonSaveState); err != nil {
			a.logs.System.Warn("app: backup before save failed: %v", err)
		}
	}

	if err := a.store.Mutate(func(st *store.AppState) error {
		update.apply(st)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("app: save state: %w", err)
	}

	report := a.store.SaveAll(a.policy)
	a.notify(EventStateUpdated, nil)
	if err := report.Err(); err != nil {
		return report, fmt.Errorf("app: save state: %w", err)
	}
	a.logs.System.Info("app: state saved (%d collections)", len(report.Saved))
	return report, nil
}

// AddImage validates img, assigns it an id when it has none, appends it to
// the gallery and persists the image list.
func (a *App) AddImage(ctx context.Context, img models.Image) (models.Image, error) {
	if err := a.requireOpen(); err != nil {
		return models.Image{}, err
	}
	if err := models.Validate(img); err != nil {
		return models.Image{}, err
	}
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}

	err := a.store.MutateAndSave(func(st *store.AppState) error {
		for _, existing := range st.ImageList {
			if existing.ID == img.ID {
				return fmt.Errorf("app: image %s: %w", img.ID, ErrDuplicateID)
			}
		}
		st.ImageList = append(st.ImageList, img)
		return nil
	}, store.Images)
	if err != nil {
		return models.Image{}, err
	}

	a.notify(EventStateUpdated, store.Images)
	return img, nil
}

// AddEquipment validates item, assigns an id when it has none, rejects it
// when another item has the same id or view name and persists the equipment
// list.
func (a *App) AddEquipment(ctx context.Context, item models.Item) (models.Item, error) {
	if err := a.requireOpen(); err != nil {
		return nil, err
	}
	if err := models.Validate(item); err != nil {
		return nil, err
	}

	base := item.Common()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}

	err := a.store.MutateAndSave(func(st *store.AppState) error {
		if st.EquipmentList.HasID(base.ID) {
			return fmt.Errorf("app: %s %s: %w", item.Kind(), base.ID, ErrDuplicateID)
		}
		if st.EquipmentList.HasViewName(base.ViewName()) {
			return fmt.Errorf("app: %s %q: %w", item.Kind(), base.ViewName(), ErrDuplicateEquipment)
		}
		return st.EquipmentList.Add(item)
	}, store.Equipment)
	if err != nil {
		return nil, err
	}

	a.logs.System.Info("app: added %s %q", item.Kind(), base.ViewName())
	a.notify(EventStateUpdated, store.Equipment)
	return item, nil
}

// findSession returns the session with id and, when present, its light
// frame.
func findSession(st *store.AppState, id uuid.UUID) (int, *models.LightFrame) {
	for i, s := range st.ImagingSessionList {
		if s.ID != id {
			continue
		}
		if f, ok := st.ImagingFrameList.LightFrame(s.LightFrameID); ok {
			return i, &f
		}
		return i, nil
	}
	return -1, nil
}

// RenameSessionFolder moves a session's folder to dest and records the new
// location. A relative dest is resolved against the current folder's parent.
// An empty dest renames the folder to its canonical "<date>_<target>" name.
// dest must be missing or an empty directory.
func (a *App) RenameSessionFolder(ctx context.Context, id uuid.UUID, dest string) (models.ImagingSession, error) {
	if err := a.requireOpen(); err != nil {
		return models.ImagingSession{}, err
	}

	var (
		session models.ImagingSession
		frame   *models.LightFrame
		found   bool
	)
	a.store.View(func(st *store.AppState) {
		i, f := findSession(st, id)
		if i < 0 {
			return
		}
		found = true
		session, frame = st.ImagingSessionList[i], f
	})
	if !found {
		return models.ImagingSession{}, fmt.Errorf("app: rename session %s: %w", id, ErrSessionNotFound)
	}

	parent := filepath.Dir(session.FolderDir)
	dest = strings.TrimSpace(dest)
	switch {
	case dest == "":
		if frame == nil {
			return models.ImagingSession{}, fmt.Errorf("app: rename session %s: light frame %s not found", id, session.LightFrameID)
		}
		dest = filepath.Join(parent, files.SessionFolderName(frame.Date, frame.Target))
	case !filepath.IsAbs(dest):
		dest = filepath.Join(parent, dest)
	}

	if err := files.RenameDir(session.FolderDir, dest); err != nil {
		return models.ImagingSession{}, fmt.Errorf("app: rename session %s: %w", id, err)
	}

	err := a.store.MutateAndSave(func(st *store.AppState) error {
		i, _ := findSession(st, id)
		if i < 0 {
			return fmt.Errorf("app: rename session %s: %w", id, ErrSessionNotFound)
		}
		st.ImagingSessionList[i].FolderDir = dest
		session = st.ImagingSessionList[i]
		return nil
	}, store.ImagingSessions)
	if err != nil {
		return models.ImagingSession{}, err
	}

	a.logs.System.Info("app: session %s moved to %s", id, dest)
	a.notify(EventStateUpdated, store.ImagingSessions)
	return session, nil
}

// OpenPath opens path with the OS default handler.
func (a *App) OpenPath(ctx context.Context, path string) error {
	if err := a.opener.Open(ctx, path); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}
