package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

// sessionForm is the editor state posted by the client.
type sessionForm struct {
	Type   string                    `json:"type"`
	Groups []viewmodel.ExerciseGroup `json:"exerciseGroups"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var month time.Time
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = t
	}

	sessions, err := s.clientFor(r).ListSessions(r.Context())
	if err != nil {
		s.writeBackendError(w, "list sessions", err)
		return
	}

	events := viewmodel.CalendarEvents(sessions, s.cfg.Options)
	if !month.IsZero() {
		events = viewmodel.EventsInMonth(events, month)
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	key, ok := dateParam(w, r)
	if !ok {
		return
	}
	client := s.clientFor(r)

	sessions, err := client.ListSessions(r.Context())
	if err != nil {
		s.writeBackendError(w, "list sessions", err)
		return
	}
	exercises, err := client.ListExercises(r.Context())
	if err != nil {
		s.writeBackendError(w, "list exercises", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"editor":    viewmodel.BuildEditor(sessions, key),
		"exercises": exercises,
		"templates": s.cfg.Templates.Labels(),
	})
}

func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	if _, ok := dateParam(w, r); !ok {
		return
	}
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	// No type chosen: keep what the user has.
	if strings.TrimSpace(form.Type) == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"type":           form.Type,
			"exerciseGroups": form.Groups,
			"created":        []models.Exercise{},
		})
		return
	}

	client := s.clientFor(r)
	exercises, err := client.ListExercises(r.Context())
	if err != nil {
		s.writeBackendError(w, "list exercises", err)
		return
	}

	res, err := viewmodel.LoadTemplate(r.Context(), form.Type, s.cfg.Templates, exercises, client, s.cfg.Options)
	if err != nil {
		s.writeBackendError(w, "load template", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":           form.Type,
		"exerciseGroups": res.Groups,
		"exercises":      res.Catalog,
		"created":        nonNil(res.Created),
	})
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	key, ok := dateParam(w, r)
	if !ok {
		return
	}
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	client := s.clientFor(r)

	sessions, err := client.ListSessions(r.Context())
	if err != nil {
		s.writeBackendError(w, "list sessions", err)
		return
	}
	existing, _ := viewmodel.FindSession(sessions, key)

	payload, flat, err := viewmodel.BuildPayload(r.Context(), key, form.Type, form.Groups, client, s.cfg.Options)
	if err != nil {
		s.writeBackendError(w, "build session payload", err)
		return
	}

	saved, err := client.SaveSession(r.Context(), existing.ID, payload)
	if err != nil {
		s.writeBackendError(w, "save session", err)
		return
	}
	if saved.Date == "" {
		saved.Date = key
	}

	s.log.Info("session saved", "date", key, "session_id", saved.ID, "sets", len(payload.Sets), "created_exercises", len(flat.Created))
	writeJSON(w, http.StatusOK, map[string]any{
		"editor":  viewmodel.BuildEditor([]models.Session{saved}, key),
		"created": nonNil(flat.Created),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	key, ok := dateParam(w, r)
	if !ok {
		return
	}
	client := s.clientFor(r)

	sessions, err := client.ListSessions(r.Context())
	if err != nil {
		s.writeBackendError(w, "list sessions", err)
		return
	}
	existing, found := viewmodel.FindSession(sessions, key)
	if !found || !existing.ID.Valid() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session on " + key})
		return
	}

	if err := client.DeleteSession(r.Context(), existing.ID); err != nil {
		s.writeBackendError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.clientFor(r).ListExercises(r.Context())
	if err != nil {
		s.writeBackendError(w, "list exercises", err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var in models.NewExercise
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if in.Category == "" {
		in.Category = s.cfg.Options.NewExerciseCategory
	}

	ex, err := s.clientFor(r).CreateExercise(r.Context(), in)
	if err != nil {
		s.writeBackendError(w, "create exercise", err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseID(chi.URLParam(r, "exerciseID"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise id"})
		return
	}
	client := s.clientFor(r)

	exercise, err := client.GetExercise(r.Context(), id)
	if err != nil {
		s.writeBackendError(w, "get exercise", err)
		return
	}
	sessions, err := client.ListSessions(r.Context())
	if err != nil {
		s.writeBackendError(w, "list sessions", err)
		return
	}

	rows := viewmodel.BuildHistory(sessions, id)
	matrix := viewmodel.Transpose(rows)
	columns := make([]string, len(matrix.Dates))
	for i, d := range matrix.Dates {
		columns[i] = viewmodel.FormatColumnDate(d)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exercise": exercise,
		"rows":     rows,
		"matrix":   matrix,
		"columns":  columns,
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Templates)
}

// dateParam reads and normalizes the {date} URL parameter, answering 400
// when it is not a date.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "date")
	key, ok := models.NormalizeDate(raw)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + raw})
		return "", false
	}
	return key, true
}

func decodeForm(w http.ResponseWriter, r *http.Request) (sessionForm, bool) {
	var form sessionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return form, false
	}
	if form.Groups == nil {
		form.Groups = []viewmodel.ExerciseGroup{}
	}
	return form, true
}

// writeBackendError maps a backend failure to a response status.
func (s *Server) writeBackendError(w http.ResponseWriter, op string, err error) {
	status := http.StatusBadGateway
	var apiErr *api.Error
	switch {
	case api.IsUnauthorized(err):
		status = http.StatusUnauthorized
	case api.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	s.log.Error(op, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": api.Message(err)})
}

func nonNil(exs []models.Exercise) []models.Exercise {
	if exs == nil {
		return []models.Exercise{}
	}
	return exs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
