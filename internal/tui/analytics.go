package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/store"
)

type windowMode int

const (
	windowWeek windowMode = iota
	windowAll
)

const (
	trendRows   = 7
	patternRows = 5
)

type analyticsModel struct {
	backend Backend
	now     func() time.Time
	width   int
	height  int

	mode   windowMode
	offset int // 7-day blocks back from today

	focus    []analytics.ModuleFocus
	stats    *analytics.SessionStats
	trends   []analytics.TrendPoint
	patterns *analytics.Patterns

	chart barchart.Model
}

func newAnalyticsModel(b Backend) analyticsModel {
	return analyticsModel{
		backend: b,
		now:     time.Now,
		chart:   barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type analyticsDataMsg struct {
	focus    []analytics.ModuleFocus
	stats    *analytics.SessionStats
	trends   []analytics.TrendPoint
	patterns *analytics.Patterns
	err      error
}

// dateRange returns the inclusive calendar window, or nils for all time.
func (a analyticsModel) dateRange() (*time.Time, *time.Time) {
	if a.mode == windowAll {
		return nil, nil
	}
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := today.AddDate(0, 0, -7*a.offset)
	from := to.AddDate(0, 0, -6)
	return &from, &to
}

func (a analyticsModel) refresh() tea.Cmd {
	from, to := a.dateRange()
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		focus, err := a.backend.FocusByModule(ctx, from, to)
		if err != nil {
			return analyticsDataMsg{err: err}
		}
		stats, err := a.backend.SessionStats(ctx, store.SessionFilter{From: from, To: to})
		if err != nil {
			return analyticsDataMsg{err: err}
		}
		trends, err := a.backend.TodoTrends(ctx, analytics.DefaultTrendPeriod, nil)
		if err != nil {
			return analyticsDataMsg{err: err}
		}
		patterns, err := a.backend.ProductivityPatterns(ctx)
		if err != nil {
			return analyticsDataMsg{err: err}
		}
		return analyticsDataMsg{focus: focus, stats: stats, trends: trends, patterns: patterns}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		if msg.err != nil {
			return a, func() tea.Msg { return errStatus("Load analytics", msg.err) }
		}
		a.focus = msg.focus
		a.stats = msg.stats
		a.trends = msg.trends
		a.patterns = msg.patterns
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if a.mode == windowWeek {
				a.offset++
				return a, a.refresh()
			}
		case key.Matches(msg, keys.Right):
			if a.mode == windowWeek && a.offset > 0 {
				a.offset--
				return a, a.refresh()
			}
		case key.Matches(msg, keys.Mode):
			if a.mode == windowWeek {
				a.mode = windowAll
			} else {
				a.mode = windowWeek
			}
			a.offset = 0
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 10
	if a.height > 40 {
		chartHeight = 14
	}
	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, f := range a.focus {
		bars = append(bars, barchart.BarData{
			Label: truncate(f.Name, 10),
			Values: []barchart.BarValue{{
				Name:  f.Name,
				Value: float64(f.TotalDuration) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(f.Color)),
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}}}
	}
	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) windowLabel() string {
	from, to := a.dateRange()
	if from == nil {
		return "All time"
	}
	return fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Format("Jan 02, 2006"))
}

func (a analyticsModel) view() string {
	w := a.width - 4

	weekTab, allTab := activeTabStyle, inactiveTabStyle
	if a.mode == windowAll {
		weekTab, allTab = inactiveTabStyle, activeTabStyle
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ",
		weekTab.Render("Week"), allTab.Render("All time"), "  ",
		mutedStyle.Render(a.windowLabel()),
	)

	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Trends (30 days)"),
		a.renderTrends(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Best hours"),
		a.renderHours(),
		"",
		titleStyle.Render("By weekday"),
		a.renderDays(),
	)
	tables := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)

	nav := mutedStyle.Render("  ←/→: move week  m: week/all time")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "",
		titleStyle.Render("Focus hours by module"),
		a.chart.View(),
		a.renderFocusTable(),
		"",
		a.renderStats(),
		"",
		tables, "", nav,
	))
}

func (a analyticsModel) renderFocusTable() string {
	if len(a.focus) == 0 {
		return mutedStyle.Render("  No modules yet")
	}
	rows := []string{mutedStyle.Render(fmt.Sprintf("  %-24s %9s %10s %10s", "Module", "Sessions", "Total", "Average"))}
	for _, f := range a.focus {
		rows = append(rows, fmt.Sprintf("  %s %-22s %9d %10s %10s",
			colorDot(f.Color), truncate(f.Name, 22), f.SessionCount,
			formatSeconds(f.TotalDuration), formatSeconds(int64(f.AvgDuration))))
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderStats() string {
	if a.stats == nil {
		return ""
	}
	s := a.stats
	return fmt.Sprintf("  %s sessions  %s completed  %s focused  %s avg",
		highlightStyle.Render(fmt.Sprint(s.TotalSessions)),
		successStyle.Render(fmt.Sprint(s.CompletedSessions)),
		highlightStyle.Render(formatHours(s.TotalDuration)),
		mutedStyle.Render(formatSeconds(int64(s.AvgDuration))),
	)
}

func (a analyticsModel) renderTrends() string {
	if len(a.trends) == 0 {
		return mutedStyle.Render("  No todos created recently")
	}
	points := a.trends
	if len(points) > trendRows {
		points = points[len(points)-trendRows:]
	}
	rows := []string{mutedStyle.Render(fmt.Sprintf("  %-10s %7s %5s %6s", "Date", "Created", "Done", "Rate"))}
	for _, p := range points {
		rows = append(rows, fmt.Sprintf("  %-10s %7d %5d %5.1f%%", p.Date, p.Created, p.Completed, p.CompletionRate))
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderHours() string {
	if a.patterns == nil || len(a.patterns.Hourly) == 0 {
		return mutedStyle.Render("  No completed focus sessions")
	}
	hours := append([]analytics.HourBucket(nil), a.patterns.Hourly...)
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].SessionCount > hours[j].SessionCount })
	if len(hours) > patternRows {
		hours = hours[:patternRows]
	}
	var rows []string
	for _, h := range hours {
		rows = append(rows, fmt.Sprintf("  %02d:00  %3d sessions  %s", h.Hour, h.SessionCount, formatHours(h.TotalDuration)))
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderDays() string {
	if a.patterns == nil || len(a.patterns.Daily) == 0 {
		return mutedStyle.Render("  -")
	}
	var rows []string
	for _, d := range a.patterns.Daily {
		rows = append(rows, fmt.Sprintf("  %-3s  %3d sessions  %s",
			time.Weekday(d.DayOfWeek).String()[:3], d.SessionCount, formatHours(d.TotalDuration)))
	}
	return strings.Join(rows, "\n")
}
