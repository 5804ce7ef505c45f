package store

import (
	"context"
	"database/sql"
	"fmt"
)

const todoColumns = `id, module_id, title, description, priority, completed, created_at, updated_at, completed_at`

func (s *Store) CreateTodo(ctx context.Context, moduleID int64, in TodoInput) (*Todo, error) {
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (module_id, title, description, priority, completed, created_at, updated_at) VALUES (?, ?, ?, ?, 0, ?, ?)`,
		moduleID, in.Title, nullString(in.Description), priority, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTodo(ctx, id)
}

func (s *Store) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id,
	))
	if err != nil {
		return nil, notFound(err, "todo", id)
	}
	return t, nil
}

// ListTodos returns a module's todos, newest first.
func (s *Store) ListTodos(ctx context.Context, moduleID int64) ([]Todo, error) {
	return s.queryTodos(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE module_id = ? ORDER BY created_at DESC, id DESC`, moduleID,
	)
}

// ListAllTodos returns every todo in insertion order.
func (s *Store) ListAllTodos(ctx context.Context) ([]Todo, error) {
	return s.queryTodos(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

func (s *Store) queryTodos(ctx context.Context, query string, args ...any) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// UpdateTodo replaces every writable field. completed_at is stamped when the
// todo becomes completed and cleared when it is not completed.
func (s *Store) UpdateTodo(ctx context.Context, id int64, in TodoInput) (*Todo, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET
			title = ?, description = ?, priority = ?,
			completed_at = CASE WHEN ? = 0 THEN NULL WHEN completed = 0 THEN ? ELSE completed_at END,
			completed = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, nullString(in.Description), in.Priority,
		boolInt(in.Completed), now,
		boolInt(in.Completed), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	if err := affected(res, "todo", id); err != nil {
		return nil, err
	}
	return s.GetTodo(ctx, id)
}

// ToggleTodo flips completed. Becoming completed stamps completed_at;
// becoming incomplete leaves the previous completed_at in place.
func (s *Store) ToggleTodo(ctx context.Context, id int64) (*Todo, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET
			completed_at = CASE WHEN completed = 0 THEN ? ELSE completed_at END,
			completed = 1 - completed, updated_at = ?
		WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle todo %d: %w", id, err)
	}
	if err := affected(res, "todo", id); err != nil {
		return nil, err
	}
	return s.GetTodo(ctx, id)
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return affected(res, "todo", id)
}

func scanTodo(r rowScanner) (*Todo, error) {
	t := &Todo{}
	var desc, completedAt sql.NullString
	var createdAt, updatedAt string
	var completed int
	if err := r.Scan(&t.ID, &t.ModuleID, &t.Title, &desc, &t.Priority, &completed, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	t.Description = desc.String
	t.Completed = completed == 1
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	t.CompletedAt = parseNullTime(completedAt)
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
