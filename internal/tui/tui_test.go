package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/myway/internal/client"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/pomodoro"
	"github.com/sadopc/myway/internal/service"
	"github.com/sadopc/myway/internal/store"
)

var (
	_ Backend = (*service.Service)(nil)
	_ Backend = (*client.Client)(nil)
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	blobs, err := files.New(t.TempDir())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}
	return service.New(st, blobs)
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// run executes a command and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func seedModule(t *testing.T, svc *service.Service, name string) (*store.Module, *store.Todo) {
	t.Helper()
	ctx := context.Background()
	m, err := svc.CreateModule(ctx, store.ModuleInput{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	td, err := svc.CreateTodo(ctx, m.ID, store.TodoInput{Title: "Read chapter 1"})
	if err != nil {
		t.Fatal(err)
	}
	return m, td
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSecondsAndHours(t *testing.T) {
	if got := formatSeconds(1500); got != "00:25:00" {
		t.Fatalf("formatSeconds(1500) = %q", got)
	}
	if got := formatHours(5400); got != "1.5h" {
		t.Fatalf("formatHours(5400) = %q", got)
	}
}

func TestFormatPomodoroTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{25 * time.Minute, "25:00"},
		{90 * time.Second, "01:30"},
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatPomodoroTime(tt.d); got != tt.want {
			t.Errorf("formatPomodoroTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Database Systems", 8); got != "Databas…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 8); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
}

func TestLastAccessed(t *testing.T) {
	now := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	if got := lastAccessed(nil, now); got != "never opened" {
		t.Fatalf("nil = %q", got)
	}
	then := now.Add(-72 * time.Hour)
	if got := lastAccessed(&then, now); got != "opened 3 days ago" {
		t.Fatalf("3 days = %q", got)
	}
}

func TestNextPhaseCycles(t *testing.T) {
	ph := pomodoro.Work
	want := []pomodoro.Phase{pomodoro.ShortBreak, pomodoro.LongBreak, pomodoro.Work}
	for i, w := range want {
		ph = nextPhase(ph)
		if ph != w {
			t.Fatalf("step %d: got %s, want %s", i, ph, w)
		}
	}
}

// ============================================================
// Pomodoro view
// ============================================================

func TestBellNotifier(t *testing.T) {
	n := &bellNotifier{}
	n.PhaseComplete(pomodoro.Work, pomodoro.ShortBreak)
	got := n.drain()
	if len(got) != 1 || strings.Contains(got[0], "\a") {
		t.Fatalf("bell should stay silent before permission, got %q", got)
	}
	if len(n.drain()) != 0 {
		t.Fatal("drain should clear pending notices")
	}

	n.RequestPermission()
	n.PhaseComplete(pomodoro.ShortBreak, pomodoro.Work)
	got = n.drain()
	if len(got) != 1 || !strings.Contains(got[0], "\a") || !strings.Contains(got[0], "short break finished") {
		t.Fatalf("unexpected notice %q", got)
	}
}

func TestPomodoroWorkPhaseCompletes(t *testing.T) {
	svc := newTestService(t)
	clock := &fakeClock{now: time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)}
	p := newPomodoroModel(svc, pomodoro.WithClock(clock.Now))

	p, _ = p.update(keyPress("s"))
	if !p.state().Running {
		t.Fatal("s should start the timer")
	}

	var last tea.Cmd
	for i := 0; i < 1500; i++ {
		clock.now = clock.now.Add(time.Second)
		p, last = p.update(tickMsg(clock.now))
	}

	st := p.state()
	if st.Phase != pomodoro.ShortBreak || st.Running || st.CompletedWork != 1 {
		t.Fatalf("after work: phase=%s running=%v completed=%d", st.Phase, st.Running, st.CompletedWork)
	}
	msg, ok := run(t, last).(statusMsg)
	if !ok || !strings.Contains(msg.text, "Up next: short break") {
		t.Fatalf("expected phase notice, got %#v", msg)
	}

	p.ctrl.Flush()
	sessions, err := svc.ListSessions(context.Background(), store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Status != store.StatusCompleted {
		t.Fatalf("expected one completed session, got %+v", sessions)
	}
	if *sessions[0].ActualDuration != 1500 {
		t.Fatalf("actual = %d, want 1500", *sessions[0].ActualDuration)
	}
}

func TestPomodoroPauseAndReset(t *testing.T) {
	svc := newTestService(t)
	clock := &fakeClock{now: time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)}
	p := newPomodoroModel(svc, pomodoro.WithClock(clock.Now))

	p, _ = p.update(keyPress(" "))
	for i := 0; i < 10; i++ {
		clock.now = clock.now.Add(time.Second)
		p, _ = p.update(tickMsg(clock.now))
	}
	p, _ = p.update(keyPress(" "))
	if p.state().Running {
		t.Fatal("space should pause a running timer")
	}
	if p.state().Remaining != 1490 {
		t.Fatalf("remaining = %d, want 1490", p.state().Remaining)
	}

	// Ticks while paused change nothing.
	p, _ = p.update(tickMsg(clock.now))
	if p.state().Remaining != 1490 {
		t.Fatal("paused timer should not count down")
	}

	p, _ = p.update(keyPress("x"))
	if p.state().Remaining != 1500 {
		t.Fatalf("reset remaining = %d, want 1500", p.state().Remaining)
	}
}

func TestPomodoroSwitchMode(t *testing.T) {
	p := newPomodoroModel(newTestService(t))
	p, _ = p.update(keyPress("m"))
	if st := p.state(); st.Phase != pomodoro.ShortBreak || st.Remaining != 300 {
		t.Fatalf("switch mode: phase=%s remaining=%d", st.Phase, st.Remaining)
	}
}

func TestPomodoroView(t *testing.T) {
	p := newPomodoroModel(newTestService(t))
	p.setSize(100, 30)
	v := p.view()
	for _, want := range []string{"Pomodoro Timer", "25:00", "WORK", "READY", "No todo bound"} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	st := pomodoro.NewState(pomodoro.ResumeNewSession)
	if got := renderProgress(st); !strings.Contains(got, "no focus blocks yet") {
		t.Fatalf("fresh progress = %q", got)
	}
	st.CompletedWork = 4
	st.Phase = pomodoro.LongBreak
	got := renderProgress(st)
	if strings.Count(got, "●") != 4 || !strings.Contains(got, "4th") {
		t.Fatalf("long break progress = %q", got)
	}
}

// ============================================================
// Modules view
// ============================================================

func TestModulesRefreshAndDrillDown(t *testing.T) {
	svc := newTestService(t)
	mod, td := seedModule(t, svc, "Operating Systems")

	m := newModulesModel(svc)
	m.setSize(100, 30)
	m, _ = m.update(run(t, m.refresh()))
	if len(m.modules) != 1 {
		t.Fatalf("modules = %d, want 1", len(m.modules))
	}
	if !strings.Contains(m.view(), "Operating Systems") {
		t.Fatal("list view should show the module")
	}

	m, cmd := m.update(keyPress("enter"))
	if !m.inDetail {
		t.Fatal("enter should open the module")
	}
	m, _ = m.update(run(t, cmd))
	if m.detail == nil || m.detail.ID != mod.ID || len(m.detail.Todos) != 1 {
		t.Fatalf("detail not loaded: %+v", m.detail)
	}
	if !strings.Contains(m.view(), "Read chapter 1") {
		t.Fatal("detail view should list the todo")
	}

	// Toggle the todo.
	_, cmd = m.update(keyPress("t"))
	if _, ok := run(t, cmd).(modulesChangedMsg); !ok {
		t.Fatal("toggle should report a change")
	}
	todos, _ := svc.ListTodos(context.Background(), mod.ID)
	if !todos[0].Completed {
		t.Fatal("todo should be completed")
	}

	// Start a pomodoro on it.
	_, cmd = m.update(keyPress("p"))
	start, ok := run(t, cmd).(startTodoMsg)
	if !ok || start.todo.ID != td.ID || start.todo.ModuleID != mod.ID {
		t.Fatalf("unexpected start message %#v", start)
	}

	m, _ = m.update(keyPress("esc"))
	if m.inDetail {
		t.Fatal("esc should leave the module")
	}
}

func TestModulesMissingModuleLeavesDetail(t *testing.T) {
	m := newModulesModel(newTestService(t))
	m.inDetail = true
	m, cmd := m.update(moduleDetailMsg{err: store.ErrNotFound})
	if m.inDetail {
		t.Fatal("failed load should close the detail view")
	}
	if msg, ok := run(t, cmd).(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestModulesMutateReportsErrors(t *testing.T) {
	m := newModulesModel(newTestService(t))
	cmd := m.mutate("done", func(ctx context.Context) error {
		_, err := m.backend.CreateModule(ctx, store.ModuleInput{})
		return err
	})
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError || !strings.Contains(msg.text, "validation") {
		t.Fatalf("expected validation status, got %#v", msg)
	}
}

func TestModulesResourcePane(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mod, _ := seedModule(t, svc, "Networks")
	if _, err := svc.CreateResource(ctx, mod.ID, store.ResourceInput{Title: "RFC", Type: store.ResourceURL, Content: "https://example.com"}, nil); err != nil {
		t.Fatal(err)
	}

	m := newModulesModel(svc)
	m.setSize(100, 30)
	m, _ = m.update(run(t, m.refresh()))
	m, cmd := m.update(keyPress("enter"))
	m, _ = m.update(run(t, cmd))
	m, _ = m.update(keyPress("l"))
	if m.pane != paneResources {
		t.Fatal("right should select the resources pane")
	}

	_, cmd = m.update(keyPress("enter"))
	changed, ok := run(t, cmd).(modulesChangedMsg)
	if !ok || !strings.Contains(changed.text, "https://example.com") {
		t.Fatalf("open should show the link, got %#v", changed)
	}
	res, _ := svc.ListResources(ctx, mod.ID)
	if res[0].AccessCount != 1 {
		t.Fatalf("access count = %d, want 1", res[0].AccessCount)
	}
}

func TestCreateResourceFromDisk(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mod, _ := seedModule(t, svc, "Compilers")

	path := filepath.Join(t.TempDir(), "dragon.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := createResource(ctx, svc, mod.ID, "Dragon book", store.ResourceFile, path); err != nil {
		t.Fatalf("createResource: %v", err)
	}
	res, _ := svc.ListResources(ctx, mod.ID)
	if len(res) != 1 || res[0].FilePath == nil || res[0].Content != "dragon.pdf" {
		t.Fatalf("unexpected resource %+v", res)
	}

	if err := createResource(ctx, svc, mod.ID, "dir", store.ResourceFile, t.TempDir()); err == nil {
		t.Fatal("directories should be rejected")
	}
	if err := createResource(ctx, svc, mod.ID, "note", store.ResourceNote, "remember"); err != nil {
		t.Fatal(err)
	}
}

func TestRequiredValidator(t *testing.T) {
	v := required("name")
	if v("  ") == nil {
		t.Fatal("blank should fail")
	}
	if v("x") != nil {
		t.Fatal("non-blank should pass")
	}
}

// ============================================================
// Dashboard, analytics, settings
// ============================================================

func TestDashboardLoad(t *testing.T) {
	svc := newTestService(t)
	seedModule(t, svc, "Linear Algebra")

	d := newDashboardModel(svc)
	d.setSize(120, 40)
	if !strings.Contains(d.view(), "Loading") {
		t.Fatal("dashboard should show loading before data")
	}
	d, _ = d.update(run(t, d.Init()))
	if d.overview == nil || d.overview.ModuleCount != 1 || d.overview.TodoCount != 1 {
		t.Fatalf("overview = %+v", d.overview)
	}
	v := d.view()
	for _, want := range []string{"Linear Algebra", "never opened", "No sessions yet", "0/1"} {
		if !strings.Contains(v, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestAnalyticsDateRange(t *testing.T) {
	a := newAnalyticsModel(newTestService(t))
	a.now = func() time.Time { return time.Date(2026, 1, 14, 18, 30, 0, 0, time.UTC) }

	from, to := a.dateRange()
	if from.Format(time.DateOnly) != "2026-01-08" || to.Format(time.DateOnly) != "2026-01-14" {
		t.Fatalf("week = %s..%s", from, to)
	}

	a, _ = a.update(keyPress("h"))
	from, to = a.dateRange()
	if from.Format(time.DateOnly) != "2026-01-01" || to.Format(time.DateOnly) != "2026-01-07" {
		t.Fatalf("previous week = %s..%s", from, to)
	}

	a, _ = a.update(keyPress("m"))
	if from, to := a.dateRange(); from != nil || to != nil || a.offset != 0 {
		t.Fatal("all-time mode should drop the window")
	}
}

func TestAnalyticsLoadAndView(t *testing.T) {
	svc := newTestService(t)
	seedModule(t, svc, "Statistics")

	a := newAnalyticsModel(svc)
	a.setSize(120, 40)
	a, _ = a.update(run(t, a.refresh()))
	if len(a.focus) != 1 || a.stats == nil || a.patterns == nil {
		t.Fatalf("analytics not loaded: focus=%d stats=%v", len(a.focus), a.stats)
	}
	if len(a.trends) != 1 || a.trends[0].Created != 1 {
		t.Fatalf("trends = %+v", a.trends)
	}
	v := a.view()
	for _, want := range []string{"Focus hours by module", "Statistics", "No completed focus sessions"} {
		if !strings.Contains(v, want) {
			t.Fatalf("analytics view missing %q", want)
		}
	}
}

func TestSettingsWeights(t *testing.T) {
	svc := newTestService(t)
	s := newSettingsModel(svc)
	s.setSize(100, 30)
	s, _ = s.update(run(t, s.refresh()))
	if len(s.settings) != 4 {
		t.Fatalf("settings = %d, want 4", len(s.settings))
	}
	if !strings.Contains(s.view(), "Todo weight") {
		t.Fatal("settings view should label weights")
	}

	*s.todo, *s.resource, *s.session, *s.completedTodo = "1", "0.5", "4", "0"
	w := s.formWeights()
	if w.Todo != 1 || w.Resource != 0.5 || w.Session != 4 || w.CompletedTodo != 0 {
		t.Fatalf("formWeights = %+v", w)
	}
	msg, ok := s.save(w)().(settingsDataMsg)
	if !ok || msg.err != nil || msg.weights.Session != 4 {
		t.Fatalf("save = %#v", msg)
	}
}

func TestValidWeight(t *testing.T) {
	for _, bad := range []string{"", "abc", "-1"} {
		if validWeight(bad) == nil {
			t.Errorf("validWeight(%q) should fail", bad)
		}
	}
	if validWeight(" 2.5 ") != nil {
		t.Fatal("2.5 should be valid")
	}
}

// ============================================================
// App
// ============================================================

func TestAppLoadingState(t *testing.T) {
	a := NewApp(newTestService(t))
	if a.View() != "Loading..." {
		t.Fatal("app should show loading before the first resize")
	}
}

func TestAppHeaderAndSwitching(t *testing.T) {
	a := NewApp(newTestService(t))
	model, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	a = model.(App)

	header := a.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing %q", name)
		}
	}

	model, cmd := a.Update(keyPress("2"))
	a = model.(App)
	if a.activeView != viewModules || cmd == nil {
		t.Fatal("2 should switch to modules and load them")
	}
	model, _ = a.Update(keyPress("tab"))
	if model.(App).activeView != viewAnalytics {
		t.Fatal("tab should advance to analytics")
	}
}

func TestAppStartTodoSwitchesToPomodoro(t *testing.T) {
	svc := newTestService(t)
	mod, td := seedModule(t, svc, "Algorithms")

	a := NewApp(svc)
	model, _ := a.Update(startTodoMsg{todo: pomodoro.TodoRef{ID: td.ID, ModuleID: mod.ID, Title: td.Title}})
	a = model.(App)
	if a.activeView != viewPomodoro {
		t.Fatal("starting a todo should show the pomodoro view")
	}
	st := a.pomodoro.state()
	if !st.Running || st.Todo == nil || st.Todo.ID != td.ID {
		t.Fatalf("state = %+v", st)
	}

	model, _ = a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	if !strings.Contains(model.(App).renderFooter(), "WORK 25:00") {
		t.Fatal("footer should show the running timer")
	}
}

func TestAppStatusMessage(t *testing.T) {
	a := NewApp(newTestService(t))
	model, _ := a.Update(statusMsg{text: "boom", isError: true})
	a = model.(App)
	if a.status != "boom" || !a.isErr {
		t.Fatalf("status = %q isErr=%v", a.status, a.isErr)
	}
}

func TestAppExport(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	a := NewApp(svc, WithExportDir(dir))

	model, _ := a.Update(keyPress("e"))
	a = model.(App)
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}
	model, _ = a.Update(keyPress("j"))
	a = model.(App)
	if a.exportCursor != 1 {
		t.Fatal("down should select JSON")
	}
	model, cmd := a.Update(keyPress("enter"))
	a = model.(App)
	done, ok := run(t, cmd).(exportDoneMsg)
	if !ok {
		t.Fatal("expected export to finish")
	}
	if filepath.Dir(done.path) != dir || filepath.Ext(done.path) != ".json" {
		t.Fatalf("export path = %q", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	model, _ = a.Update(done)
	if !strings.Contains(model.(App).status, "Exported 0 sessions") {
		t.Fatalf("status = %q", model.(App).status)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	if len(keys.FullHelp()) != 4 {
		t.Fatalf("full help groups = %d, want 4", len(keys.FullHelp()))
	}
}
