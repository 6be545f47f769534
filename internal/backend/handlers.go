package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.store.ListExercises(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, "list exercises", err)
		return
	}
	writeData(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ex, err := s.store.GetExercise(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeStoreError(w, "get exercise", err)
		return
	}
	writeData(w, http.StatusOK, ex)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var in models.NewExercise
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ex, err := s.store.CreateExercise(r.Context(), userIDFromContext(r), in)
	if err != nil {
		s.writeStoreError(w, "create exercise", err)
		return
	}
	writeData(w, http.StatusCreated, ex)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, "list sessions", err)
		return
	}
	writeData(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	session, err := s.store.CreateSession(r.Context(), userIDFromContext(r), p)
	if err != nil {
		s.writeStoreError(w, "create session", err)
		return
	}
	writeData(w, http.StatusCreated, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	session, err := s.store.UpdateSession(r.Context(), userIDFromContext(r), id, p)
	if err != nil {
		s.writeStoreError(w, "update session", err)
		return
	}
	writeData(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeStoreError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodePayload reads and validates a session body. The date is normalized
// to YYYY-MM-DD.
func decodePayload(w http.ResponseWriter, r *http.Request) (models.SessionPayload, bool) {
	var p models.SessionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return p, false
	}
	key, ok := models.NormalizeDate(p.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return p, false
	}
	p.Date = key
	for i, set := range p.Sets {
		if !set.Exercise.ID.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("set %d: exercise id is required", i))
			return p, false
		}
	}
	if p.Sets == nil {
		p.Sets = []models.SetPayload{}
	}
	return p, true
}

func idParam(w http.ResponseWriter, r *http.Request) (models.ID, bool) {
	id, ok := models.ParseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, storage.ErrUnknownExercise):
		writeError(w, http.StatusBadRequest, "unknown exercise")
	default:
		s.log.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

// writeData wraps v in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
