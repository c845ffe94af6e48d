package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"astrolog/internal/app"
	"astrolog/internal/db"
	"astrolog/internal/files"
	"astrolog/internal/models"
	"astrolog/internal/process"
	"astrolog/internal/store"
)

const maxBody = 8 << 20 // 8 MiB

// jsonWrite writes v as a JSON response with the given status code. The
// status line is already sent when encoding fails, so the failure is only
// logged.
func (s *Server) jsonWrite(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Allow localhost browser access; no auth on this server.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		if logs := s.a.Logs(); logs != nil {
			logs.Web.Warn("web: encode response: %v", err)
		}
	}
}

// jsonOK writes v as a JSON 200 response.
func (s *Server) jsonOK(w http.ResponseWriter, v any) { s.jsonWrite(w, http.StatusOK, v) }

// jsonError writes a JSON error response with the given HTTP status code.
func (s *Server) jsonError(w http.ResponseWriter, code int, msg string) {
	s.jsonWrite(w, code, map[string]string{"error": msg})
}

// errorBody is the JSON shape of a failed command.
type errorBody struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// statusFor maps a command error onto an HTTP status.
func statusFor(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, process.ErrEmptyTarget):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound),
		errors.Is(err, app.ErrSessionNotFound),
		errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, app.ErrDuplicateEquipment),
		errors.Is(err, app.ErrDuplicateID),
		errors.Is(err, files.ErrDestinationNotEmpty),
		errors.Is(err, app.ErrCloseLocked):
		return http.StatusConflict
	case errors.Is(err, app.ErrBackupsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// commandError writes err with the status statusFor assigns it. Server-side
// failures are logged.
func (s *Server) commandError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	body := errorBody{Error: fmt.Sprintf("web: %s: %s", op, err)}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if code >= http.StatusInternalServerError {
		if logs := s.a.Logs(); logs != nil {
			logs.Web.Error("web: %s: %v", op, err)
		}
	}
	s.jsonWrite(w, code, body)
}

// decodeBody decodes the JSON request body into v, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("web: %s: decode: %s", op, err))
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// handleGetView returns the frontend projection.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.a.FrontendView()
	if err != nil {
		s.commandError(w, "view", err)
		return
	}
	s.jsonOK(w, view)
}

// handleSavePreferences replaces the preferences.
func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if !s.decodeBody(w, r, "save preferences", &prefs) {
		return
	}
	if err := s.a.SavePreferences(r.Context(), prefs); err != nil {
		s.commandError(w, "save preferences", err)
		return
	}
	s.jsonOK(w, prefs)
}

// saveReportDTO is the JSON form of a store.SaveReport.
type saveReportDTO struct {
	Saved   []store.CollectionID          `json:"saved"`
	Failed  map[store.CollectionID]string `json:"failed"`
	Skipped []store.CollectionID          `json:"skipped"`
	Error   string                        `json:"error,omitempty"`
}

func newSaveReportDTO(r *store.SaveReport) saveReportDTO {
	dto := saveReportDTO{
		Saved:   append([]store.CollectionID{}, r.Saved...),
		Failed:  make(map[store.CollectionID]string, len(r.Failed)),
		Skipped: append([]store.CollectionID{}, r.Skipped...),
	}
	for id, err := range r.Failed {
		dto.Failed[id] = err.Error()
	}
	return dto
}

// handleSaveState merges the provided collections and saves everything.
func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	var update app.StateUpdate
	if !s.decodeBody(w, r, "save state", &update) {
		return
	}
	report, err := s.a.SaveState(r.Context(), update)
	if report == nil {
		s.commandError(w, "save state", err)
		return
	}
	dto := newSaveReportDTO(report)
	if err != nil {
		dto.Error = err.Error()
		s.a.Logs().Web.Error("web: save state: %v", err)
		s.jsonWrite(w, http.StatusInternalServerError, dto)
		return
	}
	s.jsonOK(w, dto)
}

// handleIntegrity reports dangling references.
func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	s.jsonOK(w, s.a.CheckIntegrity())
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// handleAddImage appends an image to the gallery.
func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request) {
	var img models.Image
	if !s.decodeBody(w, r, "add image", &img) {
		return
	}
	added, err := s.a.AddImage(r.Context(), img)
	if err != nil {
		s.commandError(w, "add image", err)
		return
	}
	s.jsonWrite(w, http.StatusCreated, added)
}

// handleAddEquipment appends an item to the list named by the kind path
// value.
func (s *Server) handleAddEquipment(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseEquipmentKind(r.PathValue("kind"))
	if err != nil {
		s.jsonError(w, http.StatusNotFound, fmt.Sprintf("web: add equipment: %s", err))
		return
	}
	item, err := models.NewItem(kind)
	if err != nil {
		s.jsonError(w, http.StatusNotFound, fmt.Sprintf("web: add equipment: %s", err))
		return
	}
	if !s.decodeBody(w, r, "add equipment", item) {
		return
	}
	added, err := s.a.AddEquipment(r.Context(), item)
	if err != nil {
		s.commandError(w, "add equipment", err)
		return
	}
	s.jsonWrite(w, http.StatusCreated, added)
}

// handleRenameSession moves a session folder.
func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("web: rename session: invalid id: %s", err))
		return
	}
	var body struct {
		Destination string `json:"destination"`
	}
	if !s.decodeBody(w, r, "rename session", &body) {
		return
	}
	session, err := s.a.RenameSessionFolder(r.Context(), id, body.Destination)
	if err != nil {
		s.commandError(w, "rename session", err)
		return
	}
	s.jsonOK(w, session)
}

// ---------------------------------------------------------------------------
// OS integration
// ---------------------------------------------------------------------------

// handleOpen opens a path with the OS default handler.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if !s.decodeBody(w, r, "open", &body) {
		return
	}
	if err := s.a.OpenPath(r.Context(), body.Path); err != nil {
		s.commandError(w, "open", err)
		return
	}
	s.jsonOK(w, map[string]bool{"ok": true})
}

func (s *Server) handleAddCloseLock(w http.ResponseWriter, r *http.Request) {
	if err := s.a.AddCloseLock(); err != nil {
		s.commandError(w, "close lock", err)
		return
	}
	s.jsonOK(w, map[string]bool{"close_lock": true})
}

func (s *Server) handleRemoveCloseLock(w http.ResponseWriter, r *http.Request) {
	if err := s.a.RemoveCloseLock(); err != nil {
		s.commandError(w, "close lock", err)
		return
	}
	s.jsonOK(w, map[string]bool{"close_lock": false})
}

// ---------------------------------------------------------------------------
// Backups
// ---------------------------------------------------------------------------

type backupDTO struct {
	ID        int64     `json:"id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
	Documents int       `json:"documents"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
}

func newBackupDTO(b db.Backup) backupDTO {
	return backupDTO{
		ID:        b.ID,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
		Age:       humanize.Time(b.CreatedAt),
		Documents: b.Documents,
		Size:      b.Size,
		SizeHuman: humanize.Bytes(uint64(b.Size)),
	}
}

// handleListBackups returns the backup journal, newest first.
func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	list, err := s.a.ListBackups(r.Context())
	if err != nil {
		s.commandError(w, "list backups", err)
		return
	}
	out := make([]backupDTO, 0, len(list))
	for _, b := range list {
		out = append(out, newBackupDTO(b))
	}
	s.jsonOK(w, out)
}

// handleCreateBackup records the current documents.
func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.a.Backup(r.Context(), db.ReasonManual)
	if err != nil {
		s.commandError(w, "create backup", err)
		return
	}
	s.jsonWrite(w, http.StatusCreated, newBackupDTO(*b))
}

// handleRestoreBackup restores a backup and returns the new view.
func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("web: restore backup: invalid id %q", raw))
		return
	}
	report, err := s.a.RestoreBackup(r.Context(), id)
	if report == nil {
		s.commandError(w, "restore backup", err)
		return
	}
	if err != nil {
		dto := newSaveReportDTO(report)
		dto.Error = err.Error()
		s.a.Logs().Web.Error("web: restore backup: %v", err)
		s.jsonWrite(w, http.StatusInternalServerError, dto)
		return
	}
	s.handleGetView(w, r)
}
