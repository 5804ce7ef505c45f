package api

import (
	"net/http"
	"strconv"

	"github.com/sadopc/myway/internal/analytics"
)

func (s *Server) overview(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := src.Overview(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ov)
	}
}

func (s *Server) focusByModule(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateWindow(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := src.FocusByModule(r.Context(), from, to)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(rows))
	}
}

func (s *Server) moduleEngagement(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := src.ModuleEngagement(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(rows))
	}
}

func (s *Server) todoTrends(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := analytics.DefaultTrendPeriod
		if v := r.URL.Query().Get("period"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				s.writeError(w, r, badRequest("invalid period %q", v))
				return
			}
			period = n
		}
		moduleID, err := queryInt64(r, "module_id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := src.TodoTrends(r.Context(), period, moduleID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(rows))
	}
}

func (s *Server) productivityPatterns(src Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := src.ProductivityPatterns(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
