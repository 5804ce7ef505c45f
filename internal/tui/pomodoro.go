package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/myway/internal/pomodoro"
)

// bellNotifier queues phase-change notices raised inside the controller so
// the view can surface them after a tick. The terminal bell is only rung
// once a session has been started by the user.
type bellNotifier struct {
	mu      sync.Mutex
	bell    bool
	pending []string
}

func (n *bellNotifier) RequestPermission() {
	n.mu.Lock()
	n.bell = true
	n.mu.Unlock()
}

func (n *bellNotifier) PhaseComplete(finished, next pomodoro.Phase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	text := fmt.Sprintf("%s finished. Up next: %s", strings.ToLower(finished.Label()), strings.ToLower(next.Label()))
	if n.bell {
		text += " \a"
	}
	n.pending = append(n.pending, text)
}

func (n *bellNotifier) drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

type pomodoroModel struct {
	ctrl   *pomodoro.Controller
	notes  *bellNotifier
	width  int
	height int
}

func newPomodoroModel(rec pomodoro.Recorder, opts ...pomodoro.Option) pomodoroModel {
	notes := &bellNotifier{}
	opts = append([]pomodoro.Option{pomodoro.WithNotifier(notes)}, opts...)
	return pomodoroModel{
		ctrl:  pomodoro.NewController(rec, opts...),
		notes: notes,
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) state() pomodoro.State { return p.ctrl.Snapshot() }

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case tickMsg:
		if p.ctrl.Snapshot().Running {
			p.ctrl.Tick(ctx)
		}
		return p, p.notices()

	case startTodoMsg:
		p.ctrl.StartWithTodo(ctx, msg.todo)
		return p, func() tea.Msg {
			return statusMsg{text: "Focusing on " + msg.todo.Title}
		}

	case tea.KeyMsg:
		st := p.ctrl.Snapshot()
		switch {
		case key.Matches(msg, keys.Start):
			if !st.Running {
				p.ctrl.Start(ctx)
			}
		case key.Matches(msg, keys.Pause):
			if st.Running {
				p.ctrl.Pause(ctx)
			} else {
				p.ctrl.Start(ctx)
			}
		case key.Matches(msg, keys.Reset):
			p.ctrl.Reset(ctx)
			return p, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		case key.Matches(msg, keys.Mode):
			p.ctrl.SwitchMode(ctx, nextPhase(st.Phase))
		}
	}
	return p, nil
}

func (p pomodoroModel) notices() tea.Cmd {
	pending := p.notes.drain()
	if len(pending) == 0 {
		return nil
	}
	text := strings.Join(pending, "; ")
	return func() tea.Msg { return statusMsg{text: text} }
}

// nextPhase cycles work → short break → long break → work.
func nextPhase(ph pomodoro.Phase) pomodoro.Phase {
	switch ph {
	case pomodoro.Work:
		return pomodoro.ShortBreak
	case pomodoro.ShortBreak:
		return pomodoro.LongBreak
	}
	return pomodoro.Work
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	st := p.ctrl.Snapshot()
	style := phaseStyle(string(st.Phase))

	title := titleStyle.Render("Pomodoro Timer")
	timeDisplay := style.Width(max(w-6, 1)).Align(lipgloss.Center).
		Render(formatPomodoroTime(time.Duration(st.Remaining) * time.Second))
	phaseLabel := style.Render(st.Phase.Label())

	var indicator string
	switch {
	case st.Running:
		indicator = successStyle.Render("●  RUNNING")
	case st.Remaining < st.Phase.Duration():
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		indicator = mutedStyle.Render("■  READY")
	}

	todoLine := mutedStyle.Render("No todo bound. Press p on a todo in Modules.")
	if st.Todo != nil {
		todoLine = highlightStyle.Render(st.Todo.Title)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		indicator,
		"",
		todoLine,
		"",
		renderProgress(st),
	)

	var controls string
	if st.Running {
		controls = mutedStyle.Render("space: pause  x: reset  m: switch mode")
	} else {
		controls = mutedStyle.Render("s/space: start  x: reset  m: switch mode")
	}

	panel := panelStyle
	if st.Running {
		panel = activePanelStyle
	}
	return panel.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderProgress shows the position inside the current long-break cycle.
func renderProgress(st pomodoro.State) string {
	done := st.CompletedWork % pomodoro.LongBreakEvery
	if done == 0 && st.CompletedWork > 0 && st.Phase == pomodoro.LongBreak {
		done = pomodoro.LongBreakEvery
	}

	var parts []string
	for i := 0; i < pomodoro.LongBreakEvery; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && st.Phase == pomodoro.Work && st.Running:
			parts = append(parts, phaseStyle(string(pomodoro.Work)).Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render("  no focus blocks yet")
	if st.CompletedWork > 0 {
		counter = mutedStyle.Render(fmt.Sprintf("  %s focus block done", humanize.Ordinal(st.CompletedWork)))
	}
	return strings.Join(parts, " ") + counter
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
