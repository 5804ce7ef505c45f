package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/demo"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/service"
	"github.com/sadopc/myway/internal/store"
)

var _ Backend = (*service.Service)(nil)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	blobs, err := files.New(t.TempDir())
	require.NoError(t, err)

	svc := service.New(st, blobs)
	return NewServer(svc, logging.Discard(), WithDemo(demo.New())).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

// =============================================================================
// Plumbing
// =============================================================================

func TestHealthAndCORS(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = do(t, h, http.MethodOptions, "/api/modules", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

type failingBackend struct {
	Backend
}

func (failingBackend) ListModules(context.Context) ([]store.Module, error) {
	return nil, errors.New("disk on fire")
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	h := NewServer(failingBackend{}, logging.Discard()).Handler()

	rec := do(t, h, http.MethodGet, "/api/modules", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorText(t, rec))
}

func TestBadInput(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/modules/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/modules", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/analytics/todo-trends?period=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/pomodoro/sessions?start_date=yesterday&end_date=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Modules, todos, resources
// =============================================================================

func TestModuleLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/modules", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorText(t, rec), "name is required")

	rec = do(t, h, http.MethodPost, "/api/modules", map[string]string{"name": "Linear Algebra"})
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode[store.Module](t, rec)
	assert.Equal(t, store.DefaultModuleColor, m.Color)

	rec = do(t, h, http.MethodGet, "/api/modules/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]any](t, rec)
	assert.Equal(t, []any{}, raw["resources"])
	assert.Equal(t, []any{}, raw["todos"])
	assert.NotNil(t, raw["last_accessed_at"])

	rec = do(t, h, http.MethodPut, "/api/modules/1", map[string]string{"name": "Linear Algebra II", "color": "#10B981"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#10B981", decode[store.Module](t, rec).Color)

	rec = do(t, h, http.MethodGet, "/api/modules", nil)
	assert.Len(t, decode[[]store.Module](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/modules/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/modules/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/modules", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestTodoRoutes(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/api/modules", map[string]string{"name": "Physics"})

	rec := do(t, h, http.MethodPost, "/api/modules/1/todos", map[string]string{"title": "Problem set 3", "priority": "asap"})
	require.Equal(t, http.StatusCreated, rec.Code)
	td := decode[store.Todo](t, rec)
	assert.Equal(t, store.PriorityMedium, td.Priority)
	assert.False(t, td.Completed)

	rec = do(t, h, http.MethodPatch, "/api/todos/1/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	td = decode[store.Todo](t, rec)
	assert.True(t, td.Completed)
	assert.NotNil(t, td.CompletedAt)

	rec = do(t, h, http.MethodPut, "/api/todos/1", map[string]any{"title": "Problem set 3", "priority": "high", "completed": false})
	require.Equal(t, http.StatusOK, rec.Code)
	td = decode[store.Todo](t, rec)
	assert.False(t, td.Completed)
	assert.Nil(t, td.CompletedAt)

	rec = do(t, h, http.MethodGet, "/api/modules/1/todos", nil)
	assert.Len(t, decode[[]store.Todo](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/todos/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPatch, "/api/todos/1/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/modules/7/todos", map[string]string{"title": "orphan"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceUploadAndDownload(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/api/modules", map[string]string{"name": "Chemistry"})

	rec := do(t, h, http.MethodPost, "/api/modules/1/resources",
		map[string]string{"title": "Periodic table", "type": "url", "content": "https://ptable.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Lab report"))
	require.NoError(t, mw.WriteField("type", "file"))
	part, err := mw.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("titration results"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/modules/1/resources", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[store.Resource](t, rec)
	assert.Equal(t, "report.txt", res.Content)
	require.NotNil(t, res.FilePath)

	rec = do(t, h, http.MethodGet, "/api/uploads/"+*res.FilePath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "titration results", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.txt")

	rec = do(t, h, http.MethodPost, "/api/resources/2/access", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[store.Resource](t, rec).AccessCount)

	rec = do(t, h, http.MethodPut, "/api/resources/1", map[string]string{"title": "Ptable", "content": "https://ptable.com/#Properties"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/modules/1/resources", nil)
	assert.Len(t, decode[[]store.Resource](t, rec), 2)

	rec = do(t, h, http.MethodDelete, "/api/resources/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/uploads/"+*res.FilePath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// Sessions, analytics, settings
// =============================================================================

func TestSessionRoutes(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/api/modules", map[string]string{"name": "History"})

	rec := do(t, h, http.MethodPost, "/api/pomodoro/sessions", map[string]any{"module_id": 1, "session_type": "work", "planned_duration": 1500})
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decode[store.Session](t, rec)
	assert.Equal(t, store.StatusRunning, sess.Status)

	rec = do(t, h, http.MethodPatch, "/api/pomodoro/sessions/1/update", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/pomodoro/sessions/1/update", map[string]any{"actual_duration": 600})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(600), *decode[store.Session](t, rec).ActualDuration)

	rec = do(t, h, http.MethodPatch, "/api/pomodoro/sessions/1/complete", map[string]any{"actual_duration": 1500, "status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decode[store.Session](t, rec)
	assert.Equal(t, store.StatusCompleted, sess.Status)
	assert.NotNil(t, sess.CompletedAt)

	rec = do(t, h, http.MethodPatch, "/api/pomodoro/sessions/9/complete", map[string]any{"actual_duration": 1, "status": "cancelled"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/pomodoro/sessions?module_id=1&status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]store.Session](t, rec)
	require.Len(t, sessions, 1)
	assert.Equal(t, "History", sessions[0].ModuleName)

	rec = do(t, h, http.MethodGet, "/api/pomodoro/sessions/stats?module_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[analytics.SessionStats](t, rec)
	assert.Equal(t, 1, stats.CompletedSessions)
	assert.Equal(t, int64(1500), stats.TotalDuration)

	rec = do(t, h, http.MethodGet, "/api/analytics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1500), decode[analytics.Overview](t, rec).TotalFocusSeconds)

	rec = do(t, h, http.MethodGet, "/api/analytics/pomodoro-by-module", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	focus := decode[[]analytics.ModuleFocus](t, rec)
	require.Len(t, focus, 1)
	assert.Equal(t, int64(1500), focus[0].TotalDuration)

	rec = do(t, h, http.MethodGet, "/api/analytics/productivity-patterns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[analytics.Patterns](t, rec).Hourly, 1)

	rec = do(t, h, http.MethodGet, "/api/analytics/todo-trends?period=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestWeightsRoutes(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/api/modules", map[string]string{"name": "Art"})
	do(t, h, http.MethodPost, "/api/modules/1/todos", map[string]string{"title": "Sketch"})

	rec := do(t, h, http.MethodGet, "/api/settings/weights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analytics.DefaultWeights(), decode[analytics.Weights](t, rec))

	rec = do(t, h, http.MethodPut, "/api/settings/weights", map[string]float64{"todo": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	w := decode[analytics.Weights](t, rec)
	assert.Equal(t, 10.0, w.Todo)
	assert.Equal(t, 3.0, w.Session)

	rec = do(t, h, http.MethodGet, "/api/analytics/module-engagement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	eng := decode[[]analytics.ModuleEngagement](t, rec)
	require.Len(t, eng, 1)
	assert.Equal(t, 10.0, eng[0].EngagementScore)

	rec = do(t, h, http.MethodPut, "/api/settings/weights", map[string]float64{"resource": -2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Setting](t, rec), 4)
}

// =============================================================================
// Demo
// =============================================================================

func TestDemoRoutes(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/demo/modules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Module](t, rec), 5)

	rec = do(t, h, http.MethodGet, "/api/demo/modules/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[store.ModuleDetail](t, rec)
	assert.Equal(t, "Machine Learning Fundamentals", d.Name)
	assert.Len(t, d.Todos, 5)

	rec = do(t, h, http.MethodGet, "/api/demo/modules/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/demo/analytics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ov := decode[analytics.Overview](t, rec)
	assert.Equal(t, 5, ov.ModuleCount)
	assert.Equal(t, 25, ov.TodoCount)

	rec = do(t, h, http.MethodGet, "/api/demo/pomodoro/sessions?module_id=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Session](t, rec), 20)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec = do(t, h, method, "/api/demo/modules/1", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "demo data is read-only", errorText(t, rec))
	}

	// Live data is untouched by demo reads.
	rec = do(t, h, http.MethodGet, "/api/modules", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}
