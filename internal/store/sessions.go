package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const sessionColumns = `ps.id, ps.module_id, ps.todo_id, ps.session_type, ps.planned_duration,
	ps.actual_duration, ps.status, ps.started_at, ps.completed_at, ps.notes`

// CreateSession inserts a running session. A zero StartedAt means now.
func (s *Store) CreateSession(ctx context.Context, in NewSession) (*Session, error) {
	started := in.StartedAt
	if started.IsZero() {
		started = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pomodoro_sessions (module_id, todo_id, session_type, planned_duration, status, started_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ModuleID, in.TodoID, in.Type, in.PlannedDuration, StatusRunning, formatTime(started), in.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(ctx, id)
}

func (s *Store) GetSession(ctx context.Context, id int64) (*Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+`, '', '' FROM pomodoro_sessions ps WHERE ps.id = ?`, id,
	))
	if err != nil {
		return nil, notFound(err, "session", id)
	}
	return sess, nil
}

// ListSessions returns sessions matching f, most recent first, with the
// owning module's name and the bound todo's title.
func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionColumns + `, COALESCE(m.name, ''), COALESCE(t.title, '')
		FROM pomodoro_sessions ps
		LEFT JOIN modules m ON ps.module_id = m.id
		LEFT JOIN todos t ON ps.todo_id = t.id`

	var where []string
	var args []any
	if f.ModuleID != nil {
		where = append(where, "ps.module_id = ?")
		args = append(args, *f.ModuleID)
	}
	if f.Status != "" {
		where = append(where, "ps.status = ?")
		args = append(args, f.Status)
	}
	if f.Type != "" {
		where = append(where, "ps.session_type = ?")
		args = append(args, f.Type)
	}
	if f.From != nil {
		where = append(where, "date(ps.started_at) >= ?")
		args = append(args, f.From.UTC().Format(time.DateOnly))
	}
	if f.To != nil {
		where = append(where, "date(ps.started_at) <= ?")
		args = append(args, f.To.UTC().Format(time.DateOnly))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ps.started_at DESC, ps.id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// UpdateSessionDuration records elapsed time on a session that is still open.
func (s *Store) UpdateSessionDuration(ctx context.Context, id, actual int64) (*Session, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pomodoro_sessions SET actual_duration = ? WHERE id = ?`, actual, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update session %d: %w", id, err)
	}
	if err := affected(res, "session", id); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, id)
}

// FinalizeSession closes a session with its final duration and status.
func (s *Store) FinalizeSession(ctx context.Context, id, actual int64, completedAt time.Time, status string) (*Session, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pomodoro_sessions SET actual_duration = ?, completed_at = ?, status = ? WHERE id = ?`,
		actual, formatTime(completedAt), status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("finalize session %d: %w", id, err)
	}
	if err := affected(res, "session", id); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, id)
}

func scanSession(r rowScanner) (*Session, error) {
	sess := &Session{}
	var moduleID, todoID, actual sql.NullInt64
	var startedAt string
	var completedAt sql.NullString
	if err := r.Scan(
		&sess.ID, &moduleID, &todoID, &sess.Type, &sess.PlannedDuration,
		&actual, &sess.Status, &startedAt, &completedAt, &sess.Notes,
		&sess.ModuleName, &sess.TodoTitle,
	); err != nil {
		return nil, err
	}
	sess.ModuleID = nullInt(moduleID)
	sess.TodoID = nullInt(todoID)
	sess.ActualDuration = nullInt(actual)
	sess.StartedAt = parseTime(startedAt)
	sess.CompletedAt = parseNullTime(completedAt)
	return sess, nil
}
