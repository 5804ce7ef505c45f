package api

import "net/http"

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.backend.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(settings))
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	wts, err := s.backend.Weights(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wts)
}

// handleSetWeights accepts a partial weights object; omitted weights keep
// their saved values.
func (s *Server) handleSetWeights(w http.ResponseWriter, r *http.Request) {
	wts, err := s.backend.Weights(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := decodeJSON(r, &wts); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.backend.SetWeights(r.Context(), wts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
