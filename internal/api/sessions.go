package api

import (
	"net/http"
	"time"

	"github.com/sadopc/myway/internal/store"
)

type sessionUpdate struct {
	ActualDuration *int64 `json:"actual_duration"`
}

type sessionCompletion struct {
	ActualDuration *int64     `json:"actual_duration"`
	CompletedAt    *time.Time `json:"completed_at"`
	Status         string     `json:"status"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in store.NewSession
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.backend.CreateSession(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in sessionUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.ActualDuration == nil {
		s.writeError(w, r, badRequest("actual_duration is required"))
		return
	}
	sess, err := s.backend.UpdateSession(r.Context(), id, *in.ActualDuration)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in sessionCompletion
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.ActualDuration == nil {
		s.writeError(w, r, badRequest("actual_duration is required"))
		return
	}
	var at time.Time
	if in.CompletedAt != nil {
		at = *in.CompletedAt
	}
	sess, err := s.backend.FinalizeSession(r.Context(), id, *in.ActualDuration, at, in.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) listSessions(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := sessionFilter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sessions, err := src.ListSessions(r.Context(), f)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(sessions))
	}
}

func (s *Server) sessionStats(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := sessionFilter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		stats, err := src.SessionStats(r.Context(), f)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
