package service

import (
	"context"
	"errors"
	"os"

	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/store"
)

func (s *Service) ListResources(ctx context.Context, moduleID int64) ([]store.Resource, error) {
	if _, err := s.store.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.store.ListResources(ctx, moduleID)
}

// CreateResource adds a resource to a module. File resources need an
// upload; its blob name goes to file_path and its original name to content.
func (s *Service) CreateResource(ctx context.Context, moduleID int64, in store.ResourceInput, up *files.Upload) (*store.Resource, error) {
	if blank(in.Title) || blank(in.Type) {
		return nil, invalid("title and type are required")
	}
	switch in.Type {
	case store.ResourceURL, store.ResourceNote:
		if blank(in.Content) {
			return nil, invalid("content is required")
		}
		in.FilePath = nil
	case store.ResourceFile:
		if up == nil || up.Body == nil {
			return nil, invalid("file is required for file resources")
		}
	default:
		return nil, invalid("invalid resource type %q", in.Type)
	}

	if _, err := s.store.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}

	if in.Type == store.ResourceFile {
		name, err := s.blobs.Save(up.Name, up.Body)
		if err != nil {
			return nil, err
		}
		in.Content = up.Name
		if blank(in.Content) {
			in.Content = name
		}
		in.FilePath = &name
	}

	r, err := s.store.CreateResource(ctx, moduleID, in)
	if err != nil {
		if in.FilePath != nil {
			if rmErr := s.blobs.Remove(*in.FilePath); rmErr != nil {
				s.log.Warn(ctx, "remove orphaned blob", "blob", *in.FilePath, "error", rmErr)
			}
		}
		return nil, err
	}
	s.log.Info(ctx, "resource created", "id", r.ID, "module_id", moduleID, "type", r.Type)
	return r, nil
}

// UpdateResource changes title and content. A file resource keeps its
// original name when content is left empty.
func (s *Service) UpdateResource(ctx context.Context, id int64, in store.ResourceInput) (*store.Resource, error) {
	if blank(in.Title) {
		return nil, invalid("title is required")
	}
	cur, err := s.store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Type != "" && in.Type != cur.Type {
		return nil, invalid("resource type cannot change")
	}
	content := in.Content
	if blank(content) {
		if cur.Type != store.ResourceFile {
			return nil, invalid("content is required")
		}
		content = cur.Content
	}
	return s.store.UpdateResource(ctx, id, in.Title, content)
}

func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	r, err := s.store.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteResource(ctx, id); err != nil {
		return err
	}
	s.removeBlob(ctx, *r)
	return nil
}

// AccessResource counts one opening of the resource.
func (s *Service) AccessResource(ctx context.Context, id int64) (*store.Resource, error) {
	if err := s.store.IncrementResourceAccess(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetResource(ctx, id)
}

// OpenUpload opens a stored blob for download and counts the access on the
// resource that owns it. The caller closes the file.
func (s *Service) OpenUpload(ctx context.Context, name string) (*os.File, *store.Resource, error) {
	f, err := s.blobs.Open(name)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) || errors.Is(err, files.ErrInvalidName) {
			return nil, nil, store.ErrNotFound
		}
		return nil, nil, err
	}
	r, err := s.store.GetResourceByFile(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return f, nil, nil
	case err != nil:
		f.Close()
		return nil, nil, err
	}
	if err := s.store.IncrementResourceAccess(ctx, r.ID); err != nil {
		s.log.Warn(ctx, "count resource access", "id", r.ID, "error", err)
	}
	return f, r, nil
}

func (s *Service) removeBlob(ctx context.Context, r store.Resource) {
	if r.Type != store.ResourceFile || r.FilePath == nil {
		return
	}
	if err := s.blobs.Remove(*r.FilePath); err != nil {
		s.log.Warn(ctx, "remove blob", "resource_id", r.ID, "blob", *r.FilePath, "error", err)
	}
}
