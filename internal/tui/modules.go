package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/pomodoro"
	"github.com/sadopc/myway/internal/store"
)

var moduleColors = []string{"#3B82F6", "#10B981", "#F59E0B", "#8B5CF6", "#EC4899", "#EF4444", "#14B8A6", "#6366F1"}
var todoPriorities = []string{store.PriorityLow, store.PriorityMedium, store.PriorityHigh}

type detailPane int

const (
	paneTodos detailPane = iota
	paneResources
)

type formKind int

const (
	formNewModule formKind = iota
	formEditModule
	formDeleteModule
	formNewTodo
	formEditTodo
	formNewResource
)

var formTitles = map[formKind]string{
	formNewModule:    "New Module",
	formEditModule:   "Edit Module",
	formDeleteModule: "Delete Module",
	formNewTodo:      "New Todo",
	formEditTodo:     "Edit Todo",
	formNewResource:  "New Resource",
}

// moduleForm holds huh field values. Pointers survive value copies of
// the model.
type moduleForm struct {
	name        *string
	description *string
	color       *string
	priority    *string
	kind        *string
	content     *string
	confirm     *bool
}

func newModuleForm() moduleForm {
	var name, desc, color, prio, kind, content string
	var confirm bool
	return moduleForm{&name, &desc, &color, &prio, &kind, &content, &confirm}
}

type modulesModel struct {
	backend Backend
	width   int
	height  int

	modules    []store.Module
	detail     *store.ModuleDetail
	cursor     int
	itemCursor int
	pane       detailPane
	inDetail   bool

	formActive bool
	form       *huh.Form
	formKind   formKind
	fields     moduleForm
	editingID  int64
}

func newModulesModel(b Backend) modulesModel {
	return modulesModel{backend: b, fields: newModuleForm()}
}

func (m *modulesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type modulesDataMsg struct {
	modules []store.Module
	err     error
}

type moduleDetailMsg struct {
	detail *store.ModuleDetail
	err    error
}

// modulesChangedMsg reports a finished mutation so the lists reload.
type modulesChangedMsg struct {
	text string
}

func (m modulesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		modules, err := m.backend.ListModules(ctx)
		return modulesDataMsg{modules: modules, err: err}
	}
}

func (m modulesModel) refreshDetail() tea.Cmd {
	mod, ok := m.selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		detail, err := m.backend.GetModule(ctx, mod.ID)
		return moduleDetailMsg{detail: detail, err: err}
	}
}

// mutate runs fn in a command and reports the outcome.
func (m modulesModel) mutate(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		if err := fn(ctx); err != nil {
			return errStatus("Error", err)
		}
		return modulesChangedMsg{text: done}
	}
}

func (m modulesModel) selected() (store.Module, bool) {
	if m.cursor < 0 || m.cursor >= len(m.modules) {
		return store.Module{}, false
	}
	return m.modules[m.cursor], true
}

func (m modulesModel) paneLen() int {
	if m.detail == nil {
		return 0
	}
	if m.pane == paneResources {
		return len(m.detail.Resources)
	}
	return len(m.detail.Todos)
}

func (m modulesModel) update(msg tea.Msg) (modulesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case modulesDataMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errStatus("Load modules", msg.err) }
		}
		m.modules = msg.modules
		if m.cursor >= len(m.modules) {
			m.cursor = max(0, len(m.modules)-1)
		}
		return m, nil

	case moduleDetailMsg:
		if msg.err != nil {
			m.inDetail = false
			return m, func() tea.Msg { return errStatus("Load module", msg.err) }
		}
		m.detail = msg.detail
		if m.itemCursor >= m.paneLen() {
			m.itemCursor = max(0, m.paneLen()-1)
		}
		return m, nil

	case modulesChangedMsg:
		cmds := []tea.Cmd{m.refresh(), func() tea.Msg { return statusMsg{text: msg.text} }}
		if m.inDetail {
			cmds = append(cmds, m.refreshDetail())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.inDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m modulesModel) updateList(msg tea.KeyMsg) (modulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.modules)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.modules) > 0 {
			m.inDetail = true
			m.detail = nil
			m.pane = paneTodos
			m.itemCursor = 0
			return m, m.refreshDetail()
		}
	case key.Matches(msg, keys.New):
		return m.showModuleForm(formNewModule)
	case key.Matches(msg, keys.Edit):
		if len(m.modules) > 0 {
			return m.showModuleForm(formEditModule)
		}
	case key.Matches(msg, keys.Delete):
		if len(m.modules) > 0 {
			return m.showDeleteForm()
		}
	}
	return m, nil
}

func (m modulesModel) updateDetail(msg tea.KeyMsg) (modulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.inDetail = false
		return m, m.refresh()
	case key.Matches(msg, keys.Left):
		m.pane, m.itemCursor = paneTodos, 0
	case key.Matches(msg, keys.Right):
		m.pane, m.itemCursor = paneResources, 0
	case key.Matches(msg, keys.Up):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.itemCursor < m.paneLen()-1 {
			m.itemCursor++
		}
	case key.Matches(msg, keys.New):
		if m.pane == paneResources {
			return m.showResourceForm()
		}
		return m.showTodoForm(formNewTodo)
	}

	if m.detail == nil || m.paneLen() == 0 {
		return m, nil
	}
	if m.pane == paneResources {
		return m.updateResourceKeys(msg, m.detail.Resources[m.itemCursor])
	}
	return m.updateTodoKeys(msg, m.detail.Todos[m.itemCursor])
}

func (m modulesModel) updateTodoKeys(msg tea.KeyMsg, td store.Todo) (modulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Toggle):
		return m, m.mutate("Todo updated", func(ctx context.Context) error {
			_, err := m.backend.ToggleTodo(ctx, td.ID)
			return err
		})
	case key.Matches(msg, keys.Delete):
		return m, m.mutate("Todo deleted", func(ctx context.Context) error {
			return m.backend.DeleteTodo(ctx, td.ID)
		})
	case key.Matches(msg, keys.Edit):
		m.editingID = td.ID
		*m.fields.name = td.Title
		*m.fields.description = td.Description
		*m.fields.priority = td.Priority
		return m.showTodoForm(formEditTodo)
	case key.Matches(msg, keys.Pomodoro):
		ref := pomodoro.TodoRef{ID: td.ID, ModuleID: td.ModuleID, Title: td.Title}
		return m, func() tea.Msg { return startTodoMsg{todo: ref} }
	}
	return m, nil
}

func (m modulesModel) updateResourceKeys(msg tea.KeyMsg, res store.Resource) (modulesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		return m, func() tea.Msg {
			ctx, cancel := requestContext()
			defer cancel()
			r, err := m.backend.AccessResource(ctx, res.ID)
			if err != nil {
				return errStatus("Open resource", err)
			}
			return modulesChangedMsg{text: fmt.Sprintf("%s: %s", r.Title, r.Content)}
		}
	case key.Matches(msg, keys.Delete):
		return m, m.mutate("Resource deleted", func(ctx context.Context) error {
			return m.backend.DeleteResource(ctx, res.ID)
		})
	}
	return m, nil
}

func (m modulesModel) showModuleForm(kind formKind) (modulesModel, tea.Cmd) {
	*m.fields.name = ""
	*m.fields.description = ""
	*m.fields.color = moduleColors[0]
	if mod, ok := m.selected(); ok && kind == formEditModule {
		m.editingID = mod.ID
		*m.fields.name = mod.Name
		*m.fields.description = mod.Description
		*m.fields.color = mod.Color
	}

	colorOptions := make([]huh.Option[string], 0, len(moduleColors)+1)
	for _, c := range moduleColors {
		colorOptions = append(colorOptions, huh.NewOption("● "+c, c))
	}
	if !slices.Contains(moduleColors, *m.fields.color) {
		colorOptions = append(colorOptions, huh.NewOption("● "+*m.fields.color, *m.fields.color))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Module Name").Value(m.fields.name).Validate(required("name")),
			huh.NewText().Title("Description").Lines(3).Value(m.fields.description),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.fields.color),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m.openForm(kind)
}

func (m modulesModel) showDeleteForm() (modulesModel, tea.Cmd) {
	mod, _ := m.selected()
	m.editingID = mod.ID
	*m.fields.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", mod.Name)).
				Description("Its todos, resources and uploaded files go with it.").
				Affirmative("Delete").
				Negative("Keep").
				Value(m.fields.confirm),
		),
	)
	return m.openForm(formDeleteModule)
}

func (m modulesModel) showTodoForm(kind formKind) (modulesModel, tea.Cmd) {
	if kind == formNewTodo {
		*m.fields.name = ""
		*m.fields.description = ""
		*m.fields.priority = store.PriorityMedium
	}
	prioOptions := make([]huh.Option[string], len(todoPriorities))
	for i, p := range todoPriorities {
		prioOptions[i] = huh.NewOption(p, p)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Todo").Value(m.fields.name).Validate(required("title")),
			huh.NewText().Title("Description").Lines(2).Value(m.fields.description),
			huh.NewSelect[string]().Title("Priority").Options(prioOptions...).Value(m.fields.priority),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m.openForm(kind)
}

func (m modulesModel) showResourceForm() (modulesModel, tea.Cmd) {
	*m.fields.name = ""
	*m.fields.kind = store.ResourceURL
	*m.fields.content = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.fields.name).Validate(required("title")),
			huh.NewSelect[string]().Title("Type").Options(
				huh.NewOption("Link", store.ResourceURL),
				huh.NewOption("Note", store.ResourceNote),
				huh.NewOption("File from disk", store.ResourceFile),
			).Value(m.fields.kind),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string { return contentTitle(*m.fields.kind) }, m.fields.kind).
				Value(m.fields.content).
				Validate(required("content")),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m.openForm(formNewResource)
}

func contentTitle(kind string) string {
	switch kind {
	case store.ResourceNote:
		return "Note"
	case store.ResourceFile:
		return "Path to file"
	}
	return "URL"
}

func (m modulesModel) openForm(kind formKind) (modulesModel, tea.Cmd) {
	m.formKind = kind
	m.formActive = true
	return m, m.form.Init()
}

func (m modulesModel) updateForm(msg tea.Msg) (modulesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.formActive = false
		return m, m.submitForm()
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// submitForm copies the field values before the command runs; the
// pointers are reused by the next form.
func (m modulesModel) submitForm() tea.Cmd {
	f := m.fields
	name := strings.TrimSpace(*f.name)
	desc, color, prio := *f.description, *f.color, *f.priority
	kind, content := *f.kind, strings.TrimSpace(*f.content)
	id := m.editingID

	switch m.formKind {
	case formNewModule:
		return m.mutate("Module created", func(ctx context.Context) error {
			_, err := m.backend.CreateModule(ctx, store.ModuleInput{Name: name, Description: desc, Color: color})
			return err
		})
	case formEditModule:
		return m.mutate("Module updated", func(ctx context.Context) error {
			_, err := m.backend.UpdateModule(ctx, id, store.ModuleInput{Name: name, Description: desc, Color: color})
			return err
		})
	case formDeleteModule:
		if !*f.confirm {
			return nil
		}
		return m.mutate("Module deleted", func(ctx context.Context) error {
			return m.backend.DeleteModule(ctx, id)
		})
	}

	if m.detail == nil {
		return nil
	}
	moduleID := m.detail.ID

	switch m.formKind {
	case formNewTodo:
		return m.mutate("Todo added", func(ctx context.Context) error {
			_, err := m.backend.CreateTodo(ctx, moduleID, store.TodoInput{Title: name, Description: desc, Priority: prio})
			return err
		})
	case formEditTodo:
		completed := false
		for _, td := range m.detail.Todos {
			if td.ID == id {
				completed = td.Completed
			}
		}
		return m.mutate("Todo updated", func(ctx context.Context) error {
			_, err := m.backend.UpdateTodo(ctx, id, store.TodoInput{Title: name, Description: desc, Priority: prio, Completed: completed})
			return err
		})
	case formNewResource:
		return m.mutate("Resource added", func(ctx context.Context) error {
			return createResource(ctx, m.backend, moduleID, name, kind, content)
		})
	}
	return nil
}

// createResource uploads the file at content for file resources.
func createResource(ctx context.Context, b Backend, moduleID int64, title, kind, content string) error {
	in := store.ResourceInput{Title: title, Type: kind, Content: content}
	if kind != store.ResourceFile {
		_, err := b.CreateResource(ctx, moduleID, in, nil)
		return err
	}

	f, err := os.Open(content)
	if err != nil {
		return fmt.Errorf("open %s: %w", content, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New(content + " is a directory")
	}
	in.Content = filepath.Base(content)
	_, err = b.CreateResource(ctx, moduleID, in, &files.Upload{Name: filepath.Base(content), Body: f})
	return err
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (m modulesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(formTitles[m.formKind]), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}
	if m.inDetail {
		return m.renderDetail(w)
	}
	return m.renderList(w)
}

func (m modulesModel) renderList(w int) string {
	title := titleStyle.Render("Modules")
	if len(m.modules) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No modules yet. Press n to create one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-32s %s", "Name", "Description")))
	for i, mod := range m.modules {
		cursor, style := "  ", normalItemStyle
		if i == m.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, style.Render(cursor)+colorDot(mod.Color)+style.Render(fmt.Sprintf(" %-32s ", truncate(mod.Name, 32)))+
			mutedStyle.Render(truncate(firstLine(mod.Description), max(w-44, 10))))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  E: edit  d: delete  enter: open"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m modulesModel) renderDetail(w int) string {
	if m.detail == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading…"))
	}
	d := m.detail
	title := titleStyle.Render(fmt.Sprintf("%s %s", colorDot(d.Color), d.Name))

	todosTab, resTab := inactiveTabStyle, activeTabStyle
	if m.pane == paneTodos {
		todosTab, resTab = activeTabStyle, inactiveTabStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Bottom,
		todosTab.Render(fmt.Sprintf("Todos (%d)", len(d.Todos))),
		resTab.Render(fmt.Sprintf("Resources (%d)", len(d.Resources))),
	)

	rows := []string{title, tabs, ""}
	var help string
	if m.pane == paneTodos {
		rows = append(rows, m.renderTodos(d.Todos)...)
		help = "n: new  E: edit  t: toggle  p: pomodoro  d: delete  →: resources  esc: back"
	} else {
		rows = append(rows, m.renderResources(d.Resources)...)
		help = "n: new  enter: open  d: delete  ←: todos  esc: back"
	}
	rows = append(rows, "", mutedStyle.Render("  "+help))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m modulesModel) renderTodos(todos []store.Todo) []string {
	if len(todos) == 0 {
		return []string{mutedStyle.Render("No todos. Press n to add one.")}
	}
	var rows []string
	for i, td := range todos {
		cursor, style := "  ", normalItemStyle
		if i == m.itemCursor {
			cursor, style = "> ", selectedItemStyle
		}
		check := "[ ]"
		if td.Completed {
			check = successStyle.Render("[✓]")
			style = mutedStyle
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s", style.Render(cursor), check,
			priorityStyle(td.Priority).Render(fmt.Sprintf("%-6s", td.Priority)), style.Render(td.Title)))
	}
	return rows
}

func (m modulesModel) renderResources(res []store.Resource) []string {
	if len(res) == 0 {
		return []string{mutedStyle.Render("No resources. Press n to add one.")}
	}
	var rows []string
	for i, r := range res {
		cursor, style := "  ", normalItemStyle
		if i == m.itemCursor {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, fmt.Sprintf("%s%-5s %s %s", style.Render(cursor), r.Type, style.Render(r.Title),
			mutedStyle.Render(fmt.Sprintf("(%d views)", r.AccessCount))))
	}
	return rows
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
