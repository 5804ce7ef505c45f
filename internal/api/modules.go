package api

import (
	"net/http"

	"github.com/sadopc/myway/internal/store"
)

func (s *Server) listModules(src ModuleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mods, err := src.ListModules(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(mods))
	}
}

func (s *Server) getModule(src ModuleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		d, err := src.GetModule(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		d.Resources, d.Todos = list(d.Resources), list(d.Todos)
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	var in store.ModuleInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.backend.CreateModule(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateModule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in store.ModuleInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.backend.UpdateModule(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteModule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.backend.DeleteModule(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "module deleted")
}
