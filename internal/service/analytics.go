package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/store"
)

// Engine returns an analytics engine over the store, scored with the
// weights currently saved in settings.
func (s *Service) Engine(ctx context.Context) (*analytics.Engine, error) {
	w, err := s.Weights(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.New(s.store, analytics.WithWeights(w), analytics.WithClock(s.now)), nil
}

func (s *Service) Overview(ctx context.Context) (*analytics.Overview, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.Overview(ctx)
}

func (s *Service) FocusByModule(ctx context.Context, from, to *time.Time) ([]analytics.ModuleFocus, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.FocusByModule(ctx, from, to)
}

func (s *Service) ModuleEngagement(ctx context.Context) ([]analytics.ModuleEngagement, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.ModuleEngagement(ctx)
}

func (s *Service) TodoTrends(ctx context.Context, period int, moduleID *int64) ([]analytics.TrendPoint, error) {
	if period < 0 {
		return nil, invalid("period must not be negative")
	}
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.TodoTrends(ctx, period, moduleID)
}

func (s *Service) ProductivityPatterns(ctx context.Context) (*analytics.Patterns, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.ProductivityPatterns(ctx)
}

func (s *Service) SessionStats(ctx context.Context, f store.SessionFilter) (*analytics.SessionStats, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.SessionStats(ctx, f)
}

func (s *Service) Settings(ctx context.Context) ([]store.Setting, error) {
	return s.store.GetAllSettings(ctx)
}

func (s *Service) Weights(ctx context.Context) (analytics.Weights, error) {
	return analytics.LoadWeights(ctx, s.store)
}

// SetWeights saves the engagement weights atomically. Negative weights are
// rejected.
func (s *Service) SetWeights(ctx context.Context, w analytics.Weights) (analytics.Weights, error) {
	values := []struct {
		key string
		v   float64
	}{
		{store.SettingWeightTodo, w.Todo},
		{store.SettingWeightResource, w.Resource},
		{store.SettingWeightSession, w.Session},
		{store.SettingWeightCompletedTodo, w.CompletedTodo},
	}
	settings := make([]store.Setting, 0, len(values))
	for _, kv := range values {
		if kv.v < 0 {
			return analytics.Weights{}, invalid("%s must not be negative", kv.key)
		}
		settings = append(settings, store.Setting{Key: kv.key, Value: strconv.FormatFloat(kv.v, 'f', -1, 64)})
	}
	if err := s.store.SetSettings(ctx, settings); err != nil {
		return analytics.Weights{}, err
	}
	s.log.Info(ctx, "engagement weights updated", "todo", w.Todo, "resource", w.Resource, "session", w.Session, "completed_todo", w.CompletedTodo)
	return s.Weights(ctx)
}
