package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sadopc/myway/internal/service"
	"github.com/sadopc/myway/internal/store"
)

var errMethodNotAllowed = errors.New("demo data is read-only")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeError maps err onto a status code. Unexpected errors are logged and
// their text is not sent to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, errMethodNotAllowed):
		status, msg = http.StatusMethodNotAllowed, err.Error()
	default:
		s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// list keeps empty results encoding as [] rather than null.
func list[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", v)
	}
	return id, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, badRequest("invalid %s %q", key, v)
	}
	return &n, nil
}

// dateWindow reads start_date and end_date. The window only applies when
// both are present.
func dateWindow(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")
	if start == "" || end == "" {
		return nil, nil, nil
	}
	f, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return nil, nil, badRequest("invalid start_date %q", start)
	}
	t, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return nil, nil, badRequest("invalid end_date %q", end)
	}
	return &f, &t, nil
}

func sessionFilter(r *http.Request) (store.SessionFilter, error) {
	var f store.SessionFilter
	moduleID, err := queryInt64(r, "module_id")
	if err != nil {
		return f, err
	}
	from, to, err := dateWindow(r)
	if err != nil {
		return f, err
	}
	f.ModuleID, f.From, f.To = moduleID, from, to
	f.Status = r.URL.Query().Get("status")
	f.Type = r.URL.Query().Get("session_type")
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, badRequest("invalid limit %q", v)
		}
		f.Limit = n
	}
	return f, nil
}
