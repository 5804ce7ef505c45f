package service

import (
	"context"

	"github.com/sadopc/myway/internal/store"
)

func (s *Service) ListModules(ctx context.Context) ([]store.Module, error) {
	return s.store.ListModules(ctx)
}

// GetModule stamps the module as accessed and returns it with its
// resources and todos.
func (s *Service) GetModule(ctx context.Context, id int64) (*store.ModuleDetail, error) {
	if err := s.store.TouchModule(ctx, id); err != nil {
		return nil, err
	}
	m, err := s.store.GetModule(ctx, id)
	if err != nil {
		return nil, err
	}
	resources, err := s.store.ListResources(ctx, id)
	if err != nil {
		return nil, err
	}
	todos, err := s.store.ListTodos(ctx, id)
	if err != nil {
		return nil, err
	}
	return &store.ModuleDetail{Module: *m, Resources: resources, Todos: todos}, nil
}

func (s *Service) CreateModule(ctx context.Context, in store.ModuleInput) (*store.Module, error) {
	if blank(in.Name) {
		return nil, invalid("name is required")
	}
	return s.store.CreateModule(ctx, in)
}

func (s *Service) UpdateModule(ctx context.Context, id int64, in store.ModuleInput) (*store.Module, error) {
	if blank(in.Name) {
		return nil, invalid("name is required")
	}
	return s.store.UpdateModule(ctx, id, in)
}

// DeleteModule removes the module and everything it owns, including the
// blobs behind its file resources.
func (s *Service) DeleteModule(ctx context.Context, id int64) error {
	resources, err := s.store.ListResources(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteModule(ctx, id); err != nil {
		return err
	}
	for _, r := range resources {
		s.removeBlob(ctx, r)
	}
	return nil
}
