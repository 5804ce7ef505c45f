package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/store"
)

// settingLabels names the persisted engagement weight keys.
var settingLabels = map[string]string{
	"weight_todo":           "Todo weight",
	"weight_resource":       "Resource weight",
	"weight_session":        "Session weight",
	"weight_completed_todo": "Completed todo weight",
}

type settingsModel struct {
	backend Backend
	width   int
	height  int

	settings   []store.Setting
	weights    analytics.Weights
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	todo          *string
	resource      *string
	session       *string
	completedTodo *string
}

func newSettingsModel(b Backend) settingsModel {
	t, r, s, c := "", "", "", ""
	return settingsModel{
		backend:       b,
		weights:       analytics.DefaultWeights(),
		todo:          &t,
		resource:      &r,
		session:       &s,
		completedTodo: &c,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	weights  analytics.Weights
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return loadSettings(ctx, s.backend)
	}
}

func loadSettings(ctx context.Context, b Backend) settingsDataMsg {
	settings, err := b.Settings(ctx)
	if err != nil {
		return settingsDataMsg{err: err}
	}
	weights, err := b.Weights(ctx)
	if err != nil {
		return settingsDataMsg{err: err}
	}
	return settingsDataMsg{settings: settings, weights: weights}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, func() tea.Msg { return errStatus("Load settings", msg.err) }
		}
		s.settings = msg.settings
		s.weights = msg.weights
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.todo = formatWeight(s.weights.Todo)
	*s.resource = formatWeight(s.weights.Resource)
	*s.session = formatWeight(s.weights.Session)
	*s.completedTodo = formatWeight(s.weights.CompletedTodo)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Points per todo").Value(s.todo).Validate(validWeight),
			huh.NewInput().Title("Points per resource").Value(s.resource).Validate(validWeight),
			huh.NewInput().Title("Points per completed focus session").Value(s.session).Validate(validWeight),
			huh.NewInput().Title("Bonus per completed todo").Value(s.completedTodo).Validate(validWeight),
		).Title("Engagement score"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save(s.formWeights())
	}
	return s, cmd
}

func (s settingsModel) formWeights() analytics.Weights {
	return analytics.Weights{
		Todo:          parseWeight(*s.todo),
		Resource:      parseWeight(*s.resource),
		Session:       parseWeight(*s.session),
		CompletedTodo: parseWeight(*s.completedTodo),
	}
}

func (s settingsModel) save(w analytics.Weights) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		if _, err := s.backend.SetWeights(ctx, w); err != nil {
			return errStatus("Save weights", err)
		}
		return loadSettings(ctx, s.backend)
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := setting.Key
		if l, ok := settingLabels[setting.Key]; ok {
			label = l
		}
		rows = append(rows, fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render(label),
			highlightStyle.Render(setting.Value)))
	}
	rows = append(rows, "",
		mutedStyle.Render(fmt.Sprintf("  score = %s×todos + %s×resources + %s×sessions + %s×completed",
			formatWeight(s.weights.Todo), formatWeight(s.weights.Resource),
			formatWeight(s.weights.Session), formatWeight(s.weights.CompletedTodo))),
		"",
		mutedStyle.Render("Press enter to edit weights"),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseWeight(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func validWeight(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
