package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const resourceColumns = `id, module_id, title, type, content, file_path, access_count, created_at`

func (s *Store) CreateResource(ctx context.Context, moduleID int64, in ResourceInput) (*Resource, error) {
	var filePath sql.NullString
	if in.FilePath != nil {
		filePath = sql.NullString{String: *in.FilePath, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (module_id, title, type, content, file_path, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		moduleID, in.Title, in.Type, nullString(in.Content), filePath, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert resource: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetResource(ctx, id)
}

func (s *Store) GetResource(ctx context.Context, id int64) (*Resource, error) {
	r, err := scanResource(s.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id,
	))
	if err != nil {
		return nil, notFound(err, "resource", id)
	}
	return r, nil
}

// GetResourceByFile looks a file resource up by its stored blob name.
func (s *Store) GetResourceByFile(ctx context.Context, filePath string) (*Resource, error) {
	r, err := scanResource(s.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE file_path = ?`, filePath,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource file %q: %w", filePath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resource file %q: %w", filePath, err)
	}
	return r, nil
}

// ListResources returns a module's resources, newest first.
func (s *Store) ListResources(ctx context.Context, moduleID int64) ([]Resource, error) {
	return s.queryResources(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE module_id = ? ORDER BY created_at DESC, id DESC`, moduleID,
	)
}

// ListAllResources returns every resource in insertion order.
func (s *Store) ListAllResources(ctx context.Context) ([]Resource, error) {
	return s.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY id`)
}

func (s *Store) queryResources(ctx context.Context, query string, args ...any) ([]Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *r)
	}
	return resources, rows.Err()
}

// UpdateResource rewrites title and content; the type and stored file are
// fixed at creation.
func (s *Store) UpdateResource(ctx context.Context, id int64, title, content string) (*Resource, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET title = ?, content = ? WHERE id = ?`, title, nullString(content), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update resource %d: %w", id, err)
	}
	if err := affected(res, "resource", id); err != nil {
		return nil, err
	}
	return s.GetResource(ctx, id)
}

func (s *Store) DeleteResource(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resource %d: %w", id, err)
	}
	return affected(res, "resource", id)
}

func (s *Store) IncrementResourceAccess(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET access_count = access_count + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("increment resource access %d: %w", id, err)
	}
	return affected(res, "resource", id)
}

func scanResource(r rowScanner) (*Resource, error) {
	res := &Resource{}
	var content, filePath sql.NullString
	var createdAt string
	if err := r.Scan(&res.ID, &res.ModuleID, &res.Title, &res.Type, &content, &filePath, &res.AccessCount, &createdAt); err != nil {
		return nil, err
	}
	res.Content = content.String
	if filePath.Valid {
		p := filePath.String
		res.FilePath = &p
	}
	res.CreatedAt = parseTime(createdAt)
	return res, nil
}
