package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/demo"
	"github.com/sadopc/myway/internal/store"
)

// demoBackend serves reads from the fixture with the analytics clock
// pinned to the moment the fixture describes.
type demoBackend struct {
	*demo.Fixture
	engine *analytics.Engine
}

func newDemoBackend(f *demo.Fixture) *demoBackend {
	return &demoBackend{
		Fixture: f,
		engine:  analytics.New(f, analytics.WithClock(func() time.Time { return demo.Now })),
	}
}

func (d *demoBackend) SessionStats(ctx context.Context, f store.SessionFilter) (*analytics.SessionStats, error) {
	return d.engine.SessionStats(ctx, f)
}

func (d *demoBackend) Overview(ctx context.Context) (*analytics.Overview, error) {
	return d.engine.Overview(ctx)
}

func (d *demoBackend) FocusByModule(ctx context.Context, from, to *time.Time) ([]analytics.ModuleFocus, error) {
	return d.engine.FocusByModule(ctx, from, to)
}

func (d *demoBackend) ModuleEngagement(ctx context.Context) ([]analytics.ModuleEngagement, error) {
	return d.engine.ModuleEngagement(ctx)
}

func (d *demoBackend) TodoTrends(ctx context.Context, period int, moduleID *int64) ([]analytics.TrendPoint, error) {
	return d.engine.TodoTrends(ctx, period, moduleID)
}

func (d *demoBackend) ProductivityPatterns(ctx context.Context) (*analytics.Patterns, error) {
	return d.engine.ProductivityPatterns(ctx)
}

func (s *Server) registerDemo(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/demo/modules", s.listModules(s.demo))
	mux.HandleFunc("GET /api/demo/modules/{id}", s.getModule(s.demo))
	mux.HandleFunc("GET /api/demo/modules/{id}/resources", s.listResources(s.demo))
	mux.HandleFunc("GET /api/demo/modules/{id}/todos", s.listTodos(s.demo))
	s.registerReports(mux, "/api/demo", s.demo)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		mux.HandleFunc(method+" /api/demo/", s.rejectDemoWrite)
	}
}

func (s *Server) rejectDemoWrite(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	s.writeError(w, r, errMethodNotAllowed)
}
