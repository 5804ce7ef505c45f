package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/export"
	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/pomodoro"
	"github.com/sadopc/myway/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	log     logging.Logger
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	dashboard dashboardModel
	modules   modulesModel
	analytics analyticsModel
	pomodoro  pomodoroModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

type options struct {
	log       logging.Logger
	policy    pomodoro.ResumePolicy
	exportDir string
}

type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithResumePolicy picks what starting the timer after a pause records.
func WithResumePolicy(p pomodoro.ResumePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithExportDir overrides the home directory as the export target.
func WithExportDir(dir string) Option {
	return func(o *options) { o.exportDir = dir }
}

func NewApp(b Backend, opts ...Option) App {
	o := options{log: logging.Discard(), policy: pomodoro.ResumeNewSession}
	for _, opt := range opts {
		opt(&o)
	}
	if o.exportDir == "" {
		o.exportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	pomo := newPomodoroModel(b,
		pomodoro.WithLogger(o.log.With("component", "pomodoro")),
		pomodoro.WithResumePolicy(o.policy),
	)
	return App{
		backend:    b,
		log:        o.log,
		exportDir:  o.exportDir,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(b),
		modules:    newModulesModel(b),
		analytics:  newAnalyticsModel(b),
		pomodoro:   pomo,
		settings:   newSettingsModel(b),
		help:       h,
	}
}

// Close waits for queued session writes and stops the timer's recorder.
func (a App) Close() { a.pomodoro.ctrl.Close() }

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.modules.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.pomodoro.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (a form) gets keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewModules)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewAnalytics)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewPomodoro)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		// The timer runs whichever view is showing.
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case startTodoMsg:
		var cmd tea.Cmd
		a.pomodoro, cmd = a.pomodoro.update(msg)
		a.activeView = viewPomodoro
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		if msg.isError {
			a.log.Warn(context.Background(), "tui error", "status", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = fmt.Sprintf("Exported %d sessions to %s", msg.count, msg.path)
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewModules:
		a.modules, cmd = a.modules.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewPomodoro:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewModules:
		return a.modules.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewModules:
		if a.modules.inDetail {
			return tea.Batch(a.modules.refresh(), a.modules.refreshDetail())
		}
		return a.modules.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewModules:
		content = a.modules.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewPomodoro:
		content = a.pomodoro.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("myway")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Pomodoro indicator
	timerInfo := ""
	st := a.pomodoro.state()
	if st.Running || st.Active != nil {
		text := fmt.Sprintf(" %s %s", st.Phase.Label(), formatPomodoroTime(time.Duration(st.Remaining)*time.Second))
		if st.Running {
			timerInfo = phaseStyle(string(st.Phase)).Render(" ●" + text)
		} else {
			timerInfo = warningStyle.Render(" ⏸" + text)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Sessions"), ""}
	for i, f := range exportFormats {
		cursor, style := "  ", normalItemStyle
		if i == a.exportCursor {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "",
		mutedStyle.Render("  to "+a.exportDir),
		mutedStyle.Render("  enter: export  esc: cancel"),
	)
	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		sessions, err := a.backend.ListSessions(ctx, store.SessionFilter{})
		if err != nil {
			return errStatus("Export", err)
		}

		if format == 0 {
			path := filepath.Join(a.exportDir, export.FileName(time.Now(), "csv"))
			if err := export.ToCSV(sessions, path); err != nil {
				return errStatus("CSV export", err)
			}
			return exportDoneMsg{path: path, count: len(sessions)}
		}
		path := filepath.Join(a.exportDir, export.FileName(time.Now(), "json"))
		if err := export.ToJSON(sessions, path); err != nil {
			return errStatus("JSON export", err)
		}
		return exportDoneMsg{path: path, count: len(sessions)}
	}
}
