package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/myway/internal/analytics"
	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/pomodoro"
	"github.com/sadopc/myway/internal/store"
)

var _ pomodoro.Recorder = (*Service)(nil)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	dir := t.TempDir()
	blobs, err := files.New(dir)
	require.NoError(t, err)
	return New(st, blobs), dir
}

func mustModule(t *testing.T, s *Service, name string) *store.Module {
	t.Helper()
	m, err := s.CreateModule(context.Background(), store.ModuleInput{Name: name})
	require.NoError(t, err)
	return m
}

func blobCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestPresenceValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	m := mustModule(t, s, "Algorithms")

	_, err := s.CreateModule(ctx, store.ModuleInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.UpdateModule(ctx, m.ID, store.ModuleInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateTodo(ctx, m.ID, store.TodoInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateResource(ctx, m.ID, store.ResourceInput{Title: "x", Type: store.ResourceURL}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateResource(ctx, m.ID, store.ResourceInput{Title: "x", Type: "video", Content: "y"}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateResource(ctx, m.ID, store.ResourceInput{Title: "x", Type: store.ResourceFile}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateSession(ctx, store.NewSession{PlannedDuration: 1500})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.FinalizeSession(ctx, 1, 10, time.Time{}, "paused")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMissingModuleIsNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.GetModule(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateTodo(ctx, 42, store.TodoInput{Title: "t"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.ListResources(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteModule(ctx, 42), store.ErrNotFound)
}

func TestGetModuleStampsAccess(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	m := mustModule(t, s, "Compilers")
	assert.Nil(t, m.LastAccessedAt)

	_, err := s.CreateTodo(ctx, m.ID, store.TodoInput{Title: "Lexer"})
	require.NoError(t, err)

	d, err := s.GetModule(ctx, m.ID)
	require.NoError(t, err)
	assert.NotNil(t, d.LastAccessedAt)
	assert.Len(t, d.Todos, 1)
	assert.Empty(t, d.Resources)
}

func TestTodoPriority(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	m := mustModule(t, s, "Networks")

	td, err := s.CreateTodo(ctx, m.ID, store.TodoInput{Title: "Read RFC 793", Priority: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, store.PriorityMedium, td.Priority)

	td, err = s.UpdateTodo(ctx, td.ID, store.TodoInput{Title: "Read RFC 793", Priority: store.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, store.PriorityHigh, td.Priority)

	_, err = s.UpdateTodo(ctx, td.ID, store.TodoInput{Title: "Read RFC 793", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSessionTodoMustBelongToModule(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	a := mustModule(t, s, "A")
	b := mustModule(t, s, "B")
	td, err := s.CreateTodo(ctx, a.ID, store.TodoInput{Title: "task"})
	require.NoError(t, err)

	_, err = s.CreateSession(ctx, store.NewSession{ModuleID: &b.ID, TodoID: &td.ID, Type: store.SessionWork, PlannedDuration: 1500})
	assert.ErrorIs(t, err, ErrValidation)

	sess, err := s.CreateSession(ctx, store.NewSession{TodoID: &td.ID, Type: store.SessionWork, PlannedDuration: 1500})
	require.NoError(t, err)
	require.NotNil(t, sess.ModuleID)
	assert.Equal(t, a.ID, *sess.ModuleID)
	assert.Equal(t, store.StatusRunning, sess.Status)

	missing := int64(999)
	_, err = s.CreateSession(ctx, store.NewSession{TodoID: &missing, Type: store.SessionWork, PlannedDuration: 1500})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFinalizeDefaultsCompletedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	sess, err := s.CreateSession(ctx, store.NewSession{Type: store.SessionShortBreak, PlannedDuration: 300})
	require.NoError(t, err)

	done, err := s.FinalizeSession(ctx, sess.ID, 300, time.Time{}, store.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(at))
}

func TestFileResourceLifecycle(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestService(t)
	m := mustModule(t, s, "Databases")

	up := &files.Upload{Name: "schema.sql", Body: strings.NewReader("CREATE TABLE t (id INTEGER);")}
	r, err := s.CreateResource(ctx, m.ID, store.ResourceInput{Title: "Schema", Type: store.ResourceFile}, up)
	require.NoError(t, err)
	assert.Equal(t, "schema.sql", r.Content)
	require.NotNil(t, r.FilePath)
	assert.Equal(t, ".sql", filepath.Ext(*r.FilePath))
	assert.Equal(t, 1, blobCount(t, dir))

	f, owner, err := s.OpenUpload(ctx, *r.FilePath)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (id INTEGER);", string(body))
	require.NotNil(t, owner)
	assert.Equal(t, r.ID, owner.ID)

	got, err := s.AccessResource(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AccessCount)

	updated, err := s.UpdateResource(ctx, r.ID, store.ResourceInput{Title: "Schema v2"})
	require.NoError(t, err)
	assert.Equal(t, "schema.sql", updated.Content)

	require.NoError(t, s.DeleteResource(ctx, r.ID))
	assert.Equal(t, 0, blobCount(t, dir))

	_, _, err = s.OpenUpload(ctx, *r.FilePath)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteModuleRemovesBlobs(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestService(t)
	m := mustModule(t, s, "Graphics")

	for _, name := range []string{"a.png", "b.png"} {
		_, err := s.CreateResource(ctx, m.ID, store.ResourceInput{Title: name, Type: store.ResourceFile},
			&files.Upload{Name: name, Body: strings.NewReader(name)})
		require.NoError(t, err)
	}
	_, err := s.CreateResource(ctx, m.ID, store.ResourceInput{Title: "notes", Type: store.ResourceNote, Content: "shaders"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, blobCount(t, dir))

	require.NoError(t, s.DeleteModule(ctx, m.ID))
	assert.Equal(t, 0, blobCount(t, dir))
}

func TestWeightsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	w, err := s.Weights(ctx)
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultWeights(), w)

	custom := analytics.Weights{Todo: 1, Resource: 0.5, Session: 4, CompletedTodo: 0}
	got, err := s.SetWeights(ctx, custom)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	_, err = s.SetWeights(ctx, analytics.Weights{Todo: -1})
	assert.ErrorIs(t, err, ErrValidation)

	// Engagement is scored with the saved weights.
	m := mustModule(t, s, "Statistics")
	_, err = s.CreateTodo(ctx, m.ID, store.TodoInput{Title: "t1"})
	require.NoError(t, err)
	eng, err := s.ModuleEngagement(ctx)
	require.NoError(t, err)
	require.Len(t, eng, 1)
	assert.Equal(t, 1.0, eng[0].EngagementScore)
}

func TestControllerRecordsThroughService(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	m := mustModule(t, s, "Operating Systems")
	td, err := s.CreateTodo(ctx, m.ID, store.TodoInput{Title: "Scheduler lab"})
	require.NoError(t, err)

	now := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)
	c := pomodoro.NewController(s, pomodoro.WithClock(func() time.Time { return now }))
	c.StartWithTodo(ctx, pomodoro.TodoRef{ID: td.ID, ModuleID: m.ID, Title: td.Title})
	now = now.Add(10 * time.Second)
	c.Reset(ctx)

	sessions, err := s.ListSessions(ctx, store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	got := sessions[0]
	assert.Equal(t, store.StatusCancelled, got.Status)
	require.NotNil(t, got.ActualDuration)
	assert.Equal(t, int64(10), *got.ActualDuration)
	assert.Equal(t, "Scheduler lab", got.TodoTitle)
	assert.Equal(t, "Operating Systems", got.ModuleName)
}

func TestErrorsAreDistinct(t *testing.T) {
	err := invalid("name is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.Equal(t, "validation failed: name is required", err.Error())
}
