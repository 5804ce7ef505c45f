// Package api exposes the study organizer over a JSON REST interface.
package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/demo"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/store"
)

// ModuleReader is the read side shared by the live backend and the demo
// fixture.
type ModuleReader interface {
	ListModules(ctx context.Context) ([]store.Module, error)
	GetModule(ctx context.Context, id int64) (*store.ModuleDetail, error)
	ListResources(ctx context.Context, moduleID int64) ([]store.Resource, error)
	ListTodos(ctx context.Context, moduleID int64) ([]store.Todo, error)
}

// Reporter answers the session and analytics queries.
type Reporter interface {
	ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error)
	SessionStats(ctx context.Context, f store.SessionFilter) (*analytics.SessionStats, error)
	Overview(ctx context.Context) (*analytics.Overview, error)
	FocusByModule(ctx context.Context, from, to *time.Time) ([]analytics.ModuleFocus, error)
	ModuleEngagement(ctx context.Context) ([]analytics.ModuleEngagement, error)
	TodoTrends(ctx context.Context, period int, moduleID *int64) ([]analytics.TrendPoint, error)
	ProductivityPatterns(ctx context.Context) (*analytics.Patterns, error)
}

// Backend is everything the live routes need. *service.Service implements it.
type Backend interface {
	ModuleReader
	Reporter

	CreateModule(ctx context.Context, in store.ModuleInput) (*store.Module, error)
	UpdateModule(ctx context.Context, id int64, in store.ModuleInput) (*store.Module, error)
	DeleteModule(ctx context.Context, id int64) error

	CreateResource(ctx context.Context, moduleID int64, in store.ResourceInput, up *files.Upload) (*store.Resource, error)
	UpdateResource(ctx context.Context, id int64, in store.ResourceInput) (*store.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	AccessResource(ctx context.Context, id int64) (*store.Resource, error)
	OpenUpload(ctx context.Context, name string) (*os.File, *store.Resource, error)

	CreateTodo(ctx context.Context, moduleID int64, in store.TodoInput) (*store.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in store.TodoInput) (*store.Todo, error)
	ToggleTodo(ctx context.Context, id int64) (*store.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error

	CreateSession(ctx context.Context, in store.NewSession) (*store.Session, error)
	UpdateSession(ctx context.Context, id, actual int64) (*store.Session, error)
	FinalizeSession(ctx context.Context, id, actual int64, completedAt time.Time, status string) (*store.Session, error)

	Settings(ctx context.Context) ([]store.Setting, error)
	Weights(ctx context.Context) (analytics.Weights, error)
	SetWeights(ctx context.Context, w analytics.Weights) (analytics.Weights, error)
}

type Server struct {
	backend Backend
	demo    *demoBackend
	log     logging.Logger
}

type Option func(*Server)

// WithDemo mounts the read-only demo routes under /api/demo.
func WithDemo(f *demo.Fixture) Option {
	return func(s *Server) { s.demo = newDemoBackend(f) }
}

func NewServer(b Backend, log logging.Logger, opts ...Option) *Server {
	s := &Server{backend: b, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.withLogging(withCORS(mux))
}

// RegisterRoutes sets up all HTTP routes.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/modules", s.listModules(s.backend))
	mux.HandleFunc("POST /api/modules", s.handleCreateModule)
	mux.HandleFunc("GET /api/modules/{id}", s.getModule(s.backend))
	mux.HandleFunc("PUT /api/modules/{id}", s.handleUpdateModule)
	mux.HandleFunc("DELETE /api/modules/{id}", s.handleDeleteModule)

	mux.HandleFunc("GET /api/modules/{id}/resources", s.listResources(s.backend))
	mux.HandleFunc("POST /api/modules/{id}/resources", s.handleCreateResource)
	mux.HandleFunc("PUT /api/resources/{id}", s.handleUpdateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", s.handleDeleteResource)
	mux.HandleFunc("POST /api/resources/{id}/access", s.handleAccessResource)
	mux.HandleFunc("GET /api/uploads/{name}", s.handleDownload)

	mux.HandleFunc("GET /api/modules/{id}/todos", s.listTodos(s.backend))
	mux.HandleFunc("POST /api/modules/{id}/todos", s.handleCreateTodo)
	mux.HandleFunc("PUT /api/todos/{id}", s.handleUpdateTodo)
	mux.HandleFunc("PATCH /api/todos/{id}/toggle", s.handleToggleTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDeleteTodo)

	mux.HandleFunc("POST /api/pomodoro/sessions", s.handleCreateSession)
	mux.HandleFunc("PATCH /api/pomodoro/sessions/{id}/update", s.handleUpdateSession)
	mux.HandleFunc("PATCH /api/pomodoro/sessions/{id}/complete", s.handleCompleteSession)
	s.registerReports(mux, "/api", s.backend)

	mux.HandleFunc("GET /api/settings", s.handleSettings)
	mux.HandleFunc("GET /api/settings/weights", s.handleWeights)
	mux.HandleFunc("PUT /api/settings/weights", s.handleSetWeights)

	if s.demo != nil {
		s.registerDemo(mux)
	}
}

// registerReports mounts the session listing and analytics queries under
// prefix, served by r.
func (s *Server) registerReports(mux *http.ServeMux, prefix string, r Reporter) {
	mux.HandleFunc("GET "+prefix+"/pomodoro/sessions", s.listSessions(r))
	mux.HandleFunc("GET "+prefix+"/pomodoro/sessions/stats", s.sessionStats(r))
	mux.HandleFunc("GET "+prefix+"/analytics/overview", s.overview(r))
	mux.HandleFunc("GET "+prefix+"/analytics/pomodoro-by-module", s.focusByModule(r))
	mux.HandleFunc("GET "+prefix+"/analytics/module-engagement", s.moduleEngagement(r))
	mux.HandleFunc("GET "+prefix+"/analytics/todo-trends", s.todoTrends(r))
	mux.HandleFunc("GET "+prefix+"/analytics/productivity-patterns", s.productivityPatterns(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
