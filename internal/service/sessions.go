package service

import (
	"context"
	"time"

	"github.com/sadopc/myway/internal/store"
)

// CreateSession opens a running session. A todo without a module takes the
// todo's module; a todo from another module is rejected.
func (s *Service) CreateSession(ctx context.Context, in store.NewSession) (*store.Session, error) {
	switch in.Type {
	case "":
		return nil, invalid("session_type is required")
	case store.SessionWork, store.SessionShortBreak, store.SessionLongBreak:
	default:
		return nil, invalid("invalid session_type %q", in.Type)
	}
	if in.PlannedDuration <= 0 {
		return nil, invalid("planned_duration is required")
	}

	if in.TodoID != nil {
		todo, err := s.store.GetTodo(ctx, *in.TodoID)
		if err != nil {
			return nil, err
		}
		switch {
		case in.ModuleID == nil:
			moduleID := todo.ModuleID
			in.ModuleID = &moduleID
		case *in.ModuleID != todo.ModuleID:
			return nil, invalid("todo %d does not belong to module %d", todo.ID, *in.ModuleID)
		}
	} else if in.ModuleID != nil {
		if _, err := s.store.GetModule(ctx, *in.ModuleID); err != nil {
			return nil, err
		}
	}

	sess, err := s.store.CreateSession(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "session created", "id", sess.ID, "type", sess.Type)
	return sess, nil
}

// UpdateSession records elapsed seconds on a paused session.
func (s *Service) UpdateSession(ctx context.Context, id, actual int64) (*store.Session, error) {
	if actual < 0 {
		return nil, invalid("actual_duration must not be negative")
	}
	return s.store.UpdateSessionDuration(ctx, id, actual)
}

// FinalizeSession closes a session. A zero completedAt means now.
func (s *Service) FinalizeSession(ctx context.Context, id, actual int64, completedAt time.Time, status string) (*store.Session, error) {
	switch status {
	case "":
		return nil, invalid("status is required")
	case store.StatusCompleted, store.StatusInterrupted, store.StatusCancelled:
	default:
		return nil, invalid("invalid status %q", status)
	}
	if actual < 0 {
		return nil, invalid("actual_duration must not be negative")
	}
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	sess, err := s.store.FinalizeSession(ctx, id, actual, completedAt, status)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "session finalized", "id", id, "status", status, "actual", actual)
	return sess, nil
}

func (s *Service) ListSessions(ctx context.Context, f store.SessionFilter) ([]store.Session, error) {
	return s.store.ListSessions(ctx, f)
}
