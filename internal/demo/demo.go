// Package demo serves a fixed, read-only study dataset. It satisfies the
// same read surface as the record store so the analytics engine and the
// HTTP handlers can run over it unchanged.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"time"

	"github.com/sadopc/myway/internal/store"
)

// Now is the instant the dataset was captured at. Analytics over the
// fixture should use it as their clock.
var Now = time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)

// Fixture is immutable after New; every list method returns a copy.
type Fixture struct {
	modules   []store.Module
	resources []store.Resource
	todos     []store.Todo
	sessions  []store.Session
}

func New() *Fixture {
	return &Fixture{
		modules:   modules,
		resources: resources,
		todos:     todos,
		sessions:  generateSessions(Now),
	}
}

func (f *Fixture) ListModules(ctx context.Context) ([]store.Module, error) {
	return slices.Clone(f.modules), nil
}

// GetModule returns the module with its resources and todos. Unlike the
// store it does not stamp last_accessed_at.
func (f *Fixture) GetModule(ctx context.Context, id int64) (*store.ModuleDetail, error) {
	i := slices.IndexFunc(f.modules, func(m store.Module) bool { return m.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("demo module %d: %w", id, store.ErrNotFound)
	}
	res, _ := f.ListResources(ctx, id)
	todos, _ := f.ListTodos(ctx, id)
	return &store.ModuleDetail{Module: f.modules[i], Resources: res, Todos: todos}, nil
}

func (f *Fixture) ListResources(ctx context.Context, moduleID int64) ([]store.Resource, error) {
	out := []store.Resource{}
	for _, r := range f.resources {
		if r.ModuleID == moduleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fixture) ListAllResources(ctx context.Context) ([]store.Resource, error) {
	return slices.Clone(f.resources), nil
}

func (f *Fixture) ListTodos(ctx context.Context, moduleID int64) ([]store.Todo, error) {
	out := []store.Todo{}
	for _, t := range f.todos {
		if t.ModuleID == moduleID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Fixture) ListAllTodos(ctx context.Context) ([]store.Todo, error) {
	return slices.Clone(f.todos), nil
}

// ListSessions applies the filter the way the store does: newest first,
// module name and todo title filled in, Limit honored.
func (f *Fixture) ListSessions(ctx context.Context, filter store.SessionFilter) ([]store.Session, error) {
	out := []store.Session{}
	for _, s := range f.sessions {
		if !filter.Match(s) {
			continue
		}
		if s.ModuleID != nil {
			s.ModuleName = f.moduleName(*s.ModuleID)
		}
		if s.TodoID != nil {
			s.TodoTitle = f.todoTitle(*s.TodoID)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *Fixture) moduleName(id int64) string {
	for _, m := range f.modules {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

func (f *Fixture) todoTitle(id int64) string {
	for _, t := range f.todos {
		if t.ID == id {
			return t.Title
		}
	}
	return ""
}

func plannedSeconds(kind string) int64 {
	switch kind {
	case store.SessionShortBreak:
		return 300
	case store.SessionLongBreak:
		return 900
	default:
		return 1500
	}
}

// generateSessions lays out each module's sessions across its trailing
// window from a fixed seed, so every Fixture holds the same rows.
func generateSessions(now time.Time) []store.Session {
	rng := rand.New(rand.NewPCG(20260114, 12))
	var out []store.Session
	for _, a := range activities {
		span := int64(a.days) * int64(24*time.Hour)
		for i := range a.count {
			start := now.Add(-time.Duration(rng.Int64N(span))).Truncate(time.Second)
			if h := start.Hour(); h < 9 || h > 22 {
				hour := a.baseHour + rng.IntN(a.hourSpan)
				start = time.Date(start.Year(), start.Month(), start.Day(), hour, start.Minute(), start.Second(), 0, time.UTC)
				if start.After(now) {
					start = start.AddDate(0, 0, -1)
				}
			}

			kind := store.SessionWork
			switch {
			case i%5 == 4:
				kind = store.SessionLongBreak
			case i%2 == 1:
				kind = store.SessionShortBreak
			}
			planned := plannedSeconds(kind)

			moduleID := a.moduleID
			sess := store.Session{
				ModuleID:        &moduleID,
				Type:            kind,
				PlannedDuration: planned,
				StartedAt:       start,
			}
			if kind == store.SessionWork {
				todoID := a.todoIDs[rng.IntN(len(a.todoIDs))]
				sess.TodoID = &todoID
			}
			if rng.Float64() < a.completion {
				actual := planned + int64(rng.IntN(3)-1)*60
				done := start.Add(time.Duration(actual) * time.Second)
				sess.Status = store.StatusCompleted
				sess.ActualDuration = &actual
				sess.CompletedAt = &done
			} else {
				actual := int64(float64(planned) * (0.3 + rng.Float64()*0.5))
				sess.Status = store.StatusInterrupted
				sess.ActualDuration = &actual
			}
			out = append(out, sess)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	for i := range out {
		out[i].ID = int64(i + 1)
	}
	return out
}
