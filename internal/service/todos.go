package service

import (
	"context"

	"github.com/sadopc/myway/internal/store"
)

func validPriority(p string) bool {
	switch p {
	case store.PriorityLow, store.PriorityMedium, store.PriorityHigh:
		return true
	}
	return false
}

func (s *Service) ListTodos(ctx context.Context, moduleID int64) ([]store.Todo, error) {
	if _, err := s.store.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.store.ListTodos(ctx, moduleID)
}

// CreateTodo adds an open todo. Unknown priorities become medium.
func (s *Service) CreateTodo(ctx context.Context, moduleID int64, in store.TodoInput) (*store.Todo, error) {
	if blank(in.Title) {
		return nil, invalid("title is required")
	}
	if !validPriority(in.Priority) {
		in.Priority = store.PriorityMedium
	}
	if _, err := s.store.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.store.CreateTodo(ctx, moduleID, in)
}

func (s *Service) UpdateTodo(ctx context.Context, id int64, in store.TodoInput) (*store.Todo, error) {
	if blank(in.Title) {
		return nil, invalid("title is required")
	}
	if in.Priority == "" {
		in.Priority = store.PriorityMedium
	}
	if !validPriority(in.Priority) {
		return nil, invalid("invalid priority %q", in.Priority)
	}
	return s.store.UpdateTodo(ctx, id, in)
}

func (s *Service) ToggleTodo(ctx context.Context, id int64) (*store.Todo, error) {
	return s.store.ToggleTodo(ctx, id)
}

func (s *Service) DeleteTodo(ctx context.Context, id int64) error {
	return s.store.DeleteTodo(ctx, id)
}
