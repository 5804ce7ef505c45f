// Package analytics computes read-only statistics over modules, todos,
// resources and pomodoro sessions. Every operation is a pure function of the
// Source contents, its arguments and the engine clock.
package analytics

import (
	"context"
	"time"

	"github.com/sadopc/myway/internal/store"
)

// Source is the read surface the engine aggregates over. *store.Store and
// the demo fixture both implement it.
type Source interface {
	ListModules(ctx context.Context) ([]store.Module, error)
	ListAllResources(ctx context.Context) ([]store.Resource, error)
	ListAllTodos(ctx context.Context) ([]store.Todo, error)
	ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error)
}

// Weights are the per-item multipliers of the engagement score.
type Weights struct {
	Todo          float64 `json:"todo"`
	Resource      float64 `json:"resource"`
	Session       float64 `json:"session"`
	CompletedTodo float64 `json:"completed_todo"`
}

func DefaultWeights() Weights {
	return Weights{Todo: 2, Resource: 1.5, Session: 3, CompletedTodo: 2.5}
}

// SettingsReader is the subset of the store used to load persisted weights.
type SettingsReader interface {
	GetFloatSetting(ctx context.Context, key string, fallback float64) (float64, error)
}

// LoadWeights reads the engagement weights from settings, falling back to
// the defaults for missing keys.
func LoadWeights(ctx context.Context, r SettingsReader) (Weights, error) {
	w := DefaultWeights()
	fields := []struct {
		key string
		dst *float64
	}{
		{store.SettingWeightTodo, &w.Todo},
		{store.SettingWeightResource, &w.Resource},
		{store.SettingWeightSession, &w.Session},
		{store.SettingWeightCompletedTodo, &w.CompletedTodo},
	}
	for _, f := range fields {
		v, err := r.GetFloatSetting(ctx, f.key, *f.dst)
		if err != nil {
			return Weights{}, err
		}
		*f.dst = v
	}
	return w, nil
}

// DefaultTrendPeriod is the trailing window, in days, of TodoTrends.
const DefaultTrendPeriod = 30

// patternWindowDays is the trailing window of ProductivityPatterns.
const patternWindowDays = 30

type Overview struct {
	ModuleCount        int   `json:"module_count"`
	TodoCount          int   `json:"todo_count"`
	CompletedTodoCount int   `json:"completed_todo_count"`
	TotalFocusSeconds  int64 `json:"total_focus_seconds"`
	TodayFocusSeconds  int64 `json:"today_focus_seconds"`
}

type ModuleFocus struct {
	ModuleID      int64   `json:"module_id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	SessionCount  int     `json:"session_count"`
	TotalDuration int64   `json:"total_duration"`
	AvgDuration   float64 `json:"avg_duration"`
}

type ModuleEngagement struct {
	ModuleID           int64      `json:"module_id"`
	Name               string     `json:"name"`
	Color              string     `json:"color"`
	TodoCount          int        `json:"todo_count"`
	ResourceCount      int        `json:"resource_count"`
	SessionCount       int        `json:"session_count"`
	CompletedTodoCount int        `json:"completed_todo_count"`
	TotalTime          int64      `json:"total_time"`
	LastAccessedAt     *time.Time `json:"last_accessed_at"`
	EngagementScore    float64    `json:"engagement_score"`
}

// TrendPoint is one creation-date bucket of todos.
type TrendPoint struct {
	Date           string  `json:"date"`
	Created        int     `json:"created"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

type HourBucket struct {
	Hour          int     `json:"hour"`
	SessionCount  int     `json:"session_count"`
	TotalDuration int64   `json:"total_duration"`
	AvgDuration   float64 `json:"avg_duration"`
}

type DayBucket struct {
	DayOfWeek     int   `json:"day_of_week"` // 0 = Sunday
	SessionCount  int   `json:"session_count"`
	TotalDuration int64 `json:"total_duration"`
}

type Patterns struct {
	Hourly []HourBucket `json:"hourly"`
	Daily  []DayBucket  `json:"daily"`
}

type SessionStats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalDuration     int64   `json:"total_duration"`
	AvgDuration       float64 `json:"avg_duration"`
}
