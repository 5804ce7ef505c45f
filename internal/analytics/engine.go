package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sadopc/myway/internal/store"
)

type Engine struct {
	src     Source
	weights Weights
	now     func() time.Time
}

type Option func(*Engine)

func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithClock sets the clock that decides "today" and trailing windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, weights: DefaultWeights(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Weights() Weights { return e.weights }

// today returns midnight UTC of the clock's current date.
func (e *Engine) today() time.Time {
	n := e.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (e *Engine) Overview(ctx context.Context) (*Overview, error) {
	modules, err := e.src.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list modules: %w", err)
	}
	todos, err := e.src.ListAllTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list todos: %w", err)
	}
	sessions, err := e.src.ListSessions(ctx, store.SessionFilter{Status: store.StatusCompleted, Type: store.SessionWork})
	if err != nil {
		return nil, fmt.Errorf("analytics: list sessions: %w", err)
	}

	out := &Overview{ModuleCount: len(modules), TodoCount: len(todos)}
	for _, t := range todos {
		if t.Completed {
			out.CompletedTodoCount++
		}
	}

	today := dateKey(e.today())
	for _, s := range sessions {
		d := duration(s)
		out.TotalFocusSeconds += d
		if dateKey(s.StartedAt) == today {
			out.TodayFocusSeconds += d
		}
	}
	return out, nil
}

// FocusByModule totals completed work sessions per module. The window
// applies only when both from and to are given; it is inclusive and
// compares calendar dates of started_at. Every module is listed, sorted by
// total duration descending. With a window, modules that have no sessions
// inside it still appear with zero count and duration rather than being
// dropped; callers that want only active modules filter on SessionCount.
func (e *Engine) FocusByModule(ctx context.Context, from, to *time.Time) ([]ModuleFocus, error) {
	modules, err := e.src.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list modules: %w", err)
	}
	f := store.SessionFilter{Status: store.StatusCompleted, Type: store.SessionWork}
	if from != nil && to != nil {
		f.From, f.To = from, to
	}
	sessions, err := e.src.ListSessions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("analytics: list sessions: %w", err)
	}

	type acc struct {
		count int
		total int64
	}
	byModule := make(map[int64]*acc)
	for _, s := range sessions {
		if s.ModuleID == nil {
			continue
		}
		a := byModule[*s.ModuleID]
		if a == nil {
			a = &acc{}
			byModule[*s.ModuleID] = a
		}
		a.count++
		a.total += duration(s)
	}

	out := make([]ModuleFocus, 0, len(modules))
	for _, m := range modules {
		mf := ModuleFocus{ModuleID: m.ID, Name: m.Name, Color: m.Color}
		if a := byModule[m.ID]; a != nil {
			mf.SessionCount = a.count
			mf.TotalDuration = a.total
			mf.AvgDuration = float64(a.total) / float64(a.count)
		}
		out = append(out, mf)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalDuration > out[j].TotalDuration })
	return out, nil
}

// ModuleEngagement ranks modules by weighted activity, highest first.
func (e *Engine) ModuleEngagement(ctx context.Context) ([]ModuleEngagement, error) {
	modules, err := e.src.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list modules: %w", err)
	}
	todos, err := e.src.ListAllTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list todos: %w", err)
	}
	resources, err := e.src.ListAllResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list resources: %w", err)
	}
	sessions, err := e.src.ListSessions(ctx, store.SessionFilter{Status: store.StatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("analytics: list sessions: %w", err)
	}

	rows := make(map[int64]*ModuleEngagement, len(modules))
	out := make([]ModuleEngagement, len(modules))
	for i, m := range modules {
		out[i] = ModuleEngagement{ModuleID: m.ID, Name: m.Name, Color: m.Color, LastAccessedAt: m.LastAccessedAt}
		rows[m.ID] = &out[i]
	}
	for _, t := range todos {
		if r := rows[t.ModuleID]; r != nil {
			r.TodoCount++
			if t.Completed {
				r.CompletedTodoCount++
			}
		}
	}
	for _, res := range resources {
		if r := rows[res.ModuleID]; r != nil {
			r.ResourceCount++
		}
	}
	for _, s := range sessions {
		if s.ModuleID == nil {
			continue
		}
		if r := rows[*s.ModuleID]; r != nil {
			r.SessionCount++
			r.TotalTime += duration(s)
		}
	}

	for i := range out {
		out[i].EngagementScore = e.score(out[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EngagementScore > out[j].EngagementScore })
	return out, nil
}

func (e *Engine) score(m ModuleEngagement) float64 {
	w := e.weights
	return float64(m.TodoCount)*w.Todo +
		float64(m.ResourceCount)*w.Resource +
		float64(m.SessionCount)*w.Session +
		float64(m.CompletedTodoCount)*w.CompletedTodo
}

// TodoTrends buckets todos by creation date over the trailing period days.
// A todo counts as completed in its creation bucket if it is completed now.
// period <= 0 means DefaultTrendPeriod; a nil moduleID means all modules.
func (e *Engine) TodoTrends(ctx context.Context, period int, moduleID *int64) ([]TrendPoint, error) {
	if period <= 0 {
		period = DefaultTrendPeriod
	}
	todos, err := e.src.ListAllTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list todos: %w", err)
	}

	since := dateKey(e.today().AddDate(0, 0, -period))
	buckets := make(map[string]*TrendPoint)
	for _, t := range todos {
		if moduleID != nil && t.ModuleID != *moduleID {
			continue
		}
		day := dateKey(t.CreatedAt)
		if day < since {
			continue
		}
		b := buckets[day]
		if b == nil {
			b = &TrendPoint{Date: day}
			buckets[day] = b
		}
		b.Created++
		if t.Completed {
			b.Completed++
		}
	}

	out := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		b.CompletionRate = completionRate(b.Completed, b.Created)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// completionRate is a percentage rounded to one decimal.
func completionRate(completed, created int) float64 {
	if created == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(created)*1000) / 10
}

// ProductivityPatterns groups completed work sessions of the trailing 30
// days by hour of day and by weekday. Empty buckets are omitted.
func (e *Engine) ProductivityPatterns(ctx context.Context) (*Patterns, error) {
	since := e.today().AddDate(0, 0, -patternWindowDays)
	sessions, err := e.src.ListSessions(ctx, store.SessionFilter{
		Status: store.StatusCompleted,
		Type:   store.SessionWork,
		From:   &since,
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: list sessions: %w", err)
	}

	hours := make(map[int]*HourBucket)
	days := make(map[int]*DayBucket)
	for _, s := range sessions {
		start := s.StartedAt.UTC()
		d := duration(s)

		h := hours[start.Hour()]
		if h == nil {
			h = &HourBucket{Hour: start.Hour()}
			hours[start.Hour()] = h
		}
		h.SessionCount++
		h.TotalDuration += d

		wd := int(start.Weekday())
		dy := days[wd]
		if dy == nil {
			dy = &DayBucket{DayOfWeek: wd}
			days[wd] = dy
		}
		dy.SessionCount++
		dy.TotalDuration += d
	}

	out := &Patterns{Hourly: []HourBucket{}, Daily: []DayBucket{}}
	for _, h := range hours {
		h.AvgDuration = float64(h.TotalDuration) / float64(h.SessionCount)
		out.Hourly = append(out.Hourly, *h)
	}
	for _, d := range days {
		out.Daily = append(out.Daily, *d)
	}
	sort.Slice(out.Hourly, func(i, j int) bool { return out.Hourly[i].Hour < out.Hourly[j].Hour })
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].DayOfWeek < out.Daily[j].DayOfWeek })
	return out, nil
}

// SessionStats counts sessions matching f. Durations only include
// completed sessions. f.Status is ignored.
func (e *Engine) SessionStats(ctx context.Context, f store.SessionFilter) (*SessionStats, error) {
	f.Status = ""
	f.Limit = 0
	sessions, err := e.src.ListSessions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("analytics: list sessions: %w", err)
	}

	out := &SessionStats{TotalSessions: len(sessions)}
	for _, s := range sessions {
		if s.Status != store.StatusCompleted {
			continue
		}
		out.CompletedSessions++
		out.TotalDuration += duration(s)
	}
	if out.CompletedSessions > 0 {
		out.AvgDuration = float64(out.TotalDuration) / float64(out.CompletedSessions)
	}
	return out, nil
}

func duration(s store.Session) int64 {
	if s.ActualDuration == nil {
		return 0
	}
	return *s.ActualDuration
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
