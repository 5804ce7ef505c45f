// Package pomodoro implements the pomodoro timer as a finite-state machine.
//
// Transition is pure: it maps a State and an Event to the next State plus the
// persistence and notification Effects the move implies. Controller owns a
// State, feeds it events and carries the effects out through a Recorder.
package pomodoro

import (
	"time"

	"github.com/sadopc/myway/internal/store"
)

type Phase string

const (
	Work       Phase = store.SessionWork
	ShortBreak Phase = store.SessionShortBreak
	LongBreak  Phase = store.SessionLongBreak
)

// LongBreakEvery is how many completed work phases earn a long break.
const LongBreakEvery = 4

// Duration returns the fixed length of the phase in seconds.
func (p Phase) Duration() int64 {
	switch p {
	case ShortBreak:
		return 300
	case LongBreak:
		return 900
	default:
		return 1500
	}
}

func (p Phase) Label() string {
	switch p {
	case ShortBreak:
		return "SHORT BREAK"
	case LongBreak:
		return "LONG BREAK"
	default:
		return "WORK"
	}
}

// ResumePolicy decides what start does after a pause.
type ResumePolicy int

const (
	// ResumeNewSession detaches the session on pause, so the next start
	// records a fresh one. The paused row keeps its partial duration.
	ResumeNewSession ResumePolicy = iota
	// ResumeSameSession keeps the paused session attached and continues
	// accumulating into it.
	ResumeSameSession
)

// TodoRef is the todo a work phase is bound to.
type TodoRef struct {
	ID       int64
	ModuleID int64
	Title    string
}

// ActiveSession tracks the persisted session of the current interval.
// Interval numbers sessions locally so effects can refer to a row before it
// exists. ID is zero until the recorder has created the row.
type ActiveSession struct {
	Interval     int64
	ID           int64
	StartedAt    time.Time
	RunningSince time.Time
	Elapsed      int64 // seconds accumulated before RunningSince
}

type State struct {
	Phase         Phase
	Running       bool
	Remaining     int64 // seconds
	CompletedWork int
	Active        *ActiveSession
	Todo          *TodoRef
	Policy        ResumePolicy
	Intervals     int64 // sessions requested so far
}

// NewState returns an idle work phase.
func NewState(policy ResumePolicy) State {
	return State{Phase: Work, Remaining: Work.Duration(), Policy: policy}
}

// Elapsed returns the seconds the active session has been running at now.
func (s State) Elapsed(now time.Time) int64 {
	if s.Active == nil {
		return 0
	}
	elapsed := s.Active.Elapsed
	if s.Running {
		elapsed += seconds(now.Sub(s.Active.RunningSince))
	}
	return elapsed
}

func (s State) clone() State {
	if s.Active != nil {
		a := *s.Active
		s.Active = &a
	}
	if s.Todo != nil {
		t := *s.Todo
		s.Todo = &t
	}
	return s
}

type EventKind int

const (
	EventStart EventKind = iota
	EventPause
	EventReset
	EventTick
	EventSwitchMode
	EventStartWithTodo
)

type Event struct {
	Kind  EventKind
	Phase Phase    // EventSwitchMode
	Todo  *TodoRef // EventStartWithTodo
}

type EffectKind int

const (
	EffectCreateSession EffectKind = iota
	EffectUpdateSession
	EffectFinalizeSession
	EffectRequestPermission
	EffectPhaseComplete
)

// Effect is a side effect requested by a transition. Only the fields
// relevant to Kind are set.
type Effect struct {
	Kind EffectKind

	Interval int64 // create, update and finalize

	Create store.NewSession // EffectCreateSession

	Actual int64     // update and finalize, seconds
	Status string    // EffectFinalizeSession
	At     time.Time // EffectFinalizeSession

	Finished Phase // EffectPhaseComplete
	Next     Phase // EffectPhaseComplete
}

// Transition computes the state following ev at instant now. It never
// mutates s.
func Transition(s State, ev Event, now time.Time) (State, []Effect) {
	s = s.clone()
	var effects []Effect

	switch ev.Kind {
	case EventSwitchMode:
		s = switchMode(s, ev.Phase)

	case EventStart:
		s, effects = start(s, now, effects)

	case EventTick:
		if !s.Running || s.Remaining <= 0 {
			break
		}
		s.Remaining--
		if s.Remaining == 0 {
			s, effects = complete(s, now, effects)
		}

	case EventPause:
		if !s.Running {
			break
		}
		elapsed := s.Elapsed(now)
		s.Running = false
		if s.Active == nil {
			break
		}
		effects = append(effects, Effect{Kind: EffectUpdateSession, Interval: s.Active.Interval, Actual: elapsed})
		if s.Policy == ResumeSameSession {
			s.Active.Elapsed = elapsed
		} else {
			s.Active = nil
		}

	case EventReset:
		if s.Active != nil {
			effects = append(effects, finalize(s, now, store.StatusCancelled))
			s.Active = nil
		}
		s.Running = false
		s.Remaining = s.Phase.Duration()

	case EventStartWithTodo:
		if s.Active != nil {
			effects = append(effects, finalize(s, now, store.StatusCancelled))
			s.Active = nil
		}
		if ev.Todo != nil {
			t := *ev.Todo
			s.Todo = &t
		}
		s = switchMode(s, Work)
		s, effects = start(s, now, effects)
	}

	return s, effects
}

func switchMode(s State, p Phase) State {
	s.Phase = p
	s.Remaining = p.Duration()
	s.Running = false
	s.Active = nil
	return s
}

func start(s State, now time.Time, effects []Effect) (State, []Effect) {
	if s.Running {
		return s, effects
	}
	if s.Active == nil {
		s.Intervals++
		s.Active = &ActiveSession{Interval: s.Intervals, StartedAt: now, RunningSince: now}
		ns := store.NewSession{
			Type:            string(s.Phase),
			PlannedDuration: s.Phase.Duration(),
			StartedAt:       now,
		}
		if s.Todo != nil {
			todoID, moduleID := s.Todo.ID, s.Todo.ModuleID
			ns.TodoID = &todoID
			ns.ModuleID = &moduleID
		}
		effects = append(effects, Effect{Kind: EffectCreateSession, Interval: s.Intervals, Create: ns})
	} else {
		s.Active.RunningSince = now
	}
	s.Running = true
	return s, append(effects, Effect{Kind: EffectRequestPermission})
}

func complete(s State, now time.Time, effects []Effect) (State, []Effect) {
	if s.Active != nil {
		effects = append(effects, finalize(s, now, store.StatusCompleted))
	}

	finished := s.Phase
	next := Work
	if finished == Work {
		s.CompletedWork++
		next = ShortBreak
		if s.CompletedWork%LongBreakEvery == 0 {
			next = LongBreak
		}
	}
	s = switchMode(s, next)
	return s, append(effects, Effect{Kind: EffectPhaseComplete, Finished: finished, Next: next})
}

func finalize(s State, now time.Time, status string) Effect {
	return Effect{
		Kind:     EffectFinalizeSession,
		Interval: s.Active.Interval,
		Actual:   s.Elapsed(now),
		Status:   status,
		At:       now,
	}
}

func seconds(d time.Duration) int64 {
	return int64(d.Round(time.Second) / time.Second)
}
