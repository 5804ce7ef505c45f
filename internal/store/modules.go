package store

import (
	"context"
	"database/sql"
	"fmt"
)

const moduleColumns = `id, name, description, color, created_at, updated_at, last_accessed_at`

func (s *Store) CreateModule(ctx context.Context, in ModuleInput) (*Module, error) {
	color := in.Color
	if color == "" {
		color = DefaultModuleColor
	}
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (name, description, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Description), color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert module: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetModule(ctx, id)
}

func (s *Store) GetModule(ctx context.Context, id int64) (*Module, error) {
	m, err := scanModule(s.db.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = ?`, id,
	))
	if err != nil {
		return nil, notFound(err, "module", id)
	}
	return m, nil
}

// ListModules returns all modules, newest first.
func (s *Store) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM modules ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *m)
	}
	return modules, rows.Err()
}

func (s *Store) UpdateModule(ctx context.Context, id int64, in ModuleInput) (*Module, error) {
	color := in.Color
	if color == "" {
		color = DefaultModuleColor
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET name = ?, description = ?, color = ?, updated_at = ? WHERE id = ?`,
		in.Name, nullString(in.Description), color, s.timestamp(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update module %d: %w", id, err)
	}
	if err := affected(res, "module", id); err != nil {
		return nil, err
	}
	return s.GetModule(ctx, id)
}

// DeleteModule removes a module; resources, todos and sessions cascade.
func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete module %d: %w", id, err)
	}
	return affected(res, "module", id)
}

// TouchModule stamps last_accessed_at with the current time.
func (s *Store) TouchModule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET last_accessed_at = ? WHERE id = ?`, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("touch module %d: %w", id, err)
	}
	return affected(res, "module", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModule(r rowScanner) (*Module, error) {
	m := &Module{}
	var desc, lastAccessed sql.NullString
	var createdAt, updatedAt string
	if err := r.Scan(&m.ID, &m.Name, &desc, &m.Color, &createdAt, &updatedAt, &lastAccessed); err != nil {
		return nil, err
	}
	m.Description = desc.String
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	m.LastAccessedAt = parseNullTime(lastAccessed)
	return m, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
