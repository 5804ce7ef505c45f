package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/store"
)

const (
	dashboardTopModules  = 5
	dashboardRecentLimit = 5
)

type dashboardModel struct {
	backend Backend
	now     func() time.Time
	width   int
	height  int

	overview   *analytics.Overview
	engagement []analytics.ModuleEngagement
	recent     []store.Session
	loadErr    error
}

func newDashboardModel(b Backend) dashboardModel {
	return dashboardModel{backend: b, now: time.Now}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	overview   *analytics.Overview
	engagement []analytics.ModuleEngagement
	recent     []store.Session
	err        error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		overview, err := d.backend.Overview(ctx)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		engagement, err := d.backend.ModuleEngagement(ctx)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		recent, err := d.backend.ListSessions(ctx, store.SessionFilter{Limit: dashboardRecentLimit})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return dashboardDataMsg{overview: overview, engagement: engagement, recent: recent}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(dashboardDataMsg); ok {
		d.loadErr = msg.err
		if msg.err != nil {
			return d, func() tea.Msg { return errStatus("Load dashboard", msg.err) }
		}
		d.overview = msg.overview
		d.engagement = msg.engagement
		d.recent = msg.recent
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if d.overview == nil {
		text := "Loading…"
		if d.loadErr != nil {
			text = errorStyle.Render(d.loadErr.Error())
		}
		return panelStyle.Width(w).Render(text)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderCards(w),
		d.renderEngagementPanel(w),
		d.renderRecentPanel(w),
	)
}

func (d dashboardModel) renderCards(w int) string {
	ov := d.overview
	cards := []struct{ label, value string }{
		{"Modules", fmt.Sprintf("%d", ov.ModuleCount)},
		{"Todos done", fmt.Sprintf("%d/%d", ov.CompletedTodoCount, ov.TodoCount)},
		{"Focus today", formatSeconds(ov.TodayFocusSeconds)},
		{"Focus total", formatHours(ov.TotalFocusSeconds)},
	}

	cardWidth := max((w-len(cards)*2)/len(cards), 12)
	var rendered []string
	for _, c := range cards {
		body := lipgloss.JoinVertical(lipgloss.Center,
			highlightStyle.Bold(true).Render(c.value),
			mutedStyle.Render(c.label),
		)
		rendered = append(rendered, cardStyle.Width(cardWidth).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (d dashboardModel) renderEngagementPanel(w int) string {
	title := titleStyle.Render("Most engaged modules")
	if len(d.engagement) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No modules yet. Press 2 to create one."),
		))
	}

	rows := []string{title}
	now := d.now()
	for i, m := range d.engagement {
		if i == dashboardTopModules {
			break
		}
		rows = append(rows, fmt.Sprintf("  %s %-28s %6.1f  %s",
			colorDot(m.Color),
			truncate(m.Name, 28),
			m.EngagementScore,
			mutedStyle.Render(lastAccessed(m.LastAccessedAt, now)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent sessions")
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		))
	}

	rows := []string{title}
	for _, s := range d.recent {
		icon, dur := sessionIcon(s.Status), "running"
		if s.ActualDuration != nil {
			dur = formatSeconds(*s.ActualDuration)
		}
		module := s.ModuleName
		if module == "" {
			module = "-"
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-24s %-12s %s",
			icon,
			s.StartedAt.Local().Format("Jan 02 15:04"),
			truncate(module, 24),
			s.Type,
			dur,
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func sessionIcon(status string) string {
	switch status {
	case store.StatusCompleted:
		return successStyle.Render("✓")
	case store.StatusRunning:
		return highlightStyle.Render("●")
	case store.StatusCancelled:
		return mutedStyle.Render("✗")
	}
	return warningStyle.Render("◐")
}
