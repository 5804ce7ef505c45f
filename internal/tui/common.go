package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/pomodoro"
	"github.com/sadopc/myway/internal/store"
)

// Backend is what the terminal client reads and mutates. The in-process
// service and the HTTP client both satisfy it.
type Backend interface {
	pomodoro.Recorder

	ListModules(ctx context.Context) ([]store.Module, error)
	GetModule(ctx context.Context, id int64) (*store.ModuleDetail, error)
	CreateModule(ctx context.Context, in store.ModuleInput) (*store.Module, error)
	UpdateModule(ctx context.Context, id int64, in store.ModuleInput) (*store.Module, error)
	DeleteModule(ctx context.Context, id int64) error

	CreateResource(ctx context.Context, moduleID int64, in store.ResourceInput, up *files.Upload) (*store.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	AccessResource(ctx context.Context, id int64) (*store.Resource, error)

	CreateTodo(ctx context.Context, moduleID int64, in store.TodoInput) (*store.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in store.TodoInput) (*store.Todo, error)
	ToggleTodo(ctx context.Context, id int64) (*store.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error

	ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error)
	SessionStats(ctx context.Context, f store.SessionFilter) (*analytics.SessionStats, error)
	Overview(ctx context.Context) (*analytics.Overview, error)
	FocusByModule(ctx context.Context, from, to *time.Time) ([]analytics.ModuleFocus, error)
	ModuleEngagement(ctx context.Context) ([]analytics.ModuleEngagement, error)
	TodoTrends(ctx context.Context, period int, moduleID *int64) ([]analytics.TrendPoint, error)
	ProductivityPatterns(ctx context.Context) (*analytics.Patterns, error)

	Settings(ctx context.Context) ([]store.Setting, error)
	Weights(ctx context.Context) (analytics.Weights, error)
	SetWeights(ctx context.Context, w analytics.Weights) (analytics.Weights, error)
}

const requestTimeout = 10 * time.Second

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewModules
	viewAnalytics
	viewPomodoro
	viewSettings
)

var viewNames = []string{"Dashboard", "Modules", "Analytics", "Pomodoro", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// startTodoMsg asks the app to bind a todo to the pomodoro timer.
type startTodoMsg struct {
	todo pomodoro.TodoRef
}

type exportDoneMsg struct {
	path  string
	count int
}

func errStatus(action string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", action, err), isError: true}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// lastAccessed renders a module's last visit relative to now.
func lastAccessed(t *time.Time, now time.Time) string {
	if t == nil {
		return "never opened"
	}
	return "opened " + humanize.RelTime(*t, now, "ago", "from now")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
