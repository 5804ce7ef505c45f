package pomodoro

import (
	"context"
	"sync"
	"time"

	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/store"
)

// Recorder persists sessions on behalf of the controller. The service layer
// implements it in-process and the HTTP client implements it remotely.
type Recorder interface {
	CreateSession(ctx context.Context, in store.NewSession) (*store.Session, error)
	UpdateSession(ctx context.Context, id, actual int64) (*store.Session, error)
	FinalizeSession(ctx context.Context, id, actual int64, completedAt time.Time, status string) (*store.Session, error)
}

// Notifier receives user-facing notifications.
type Notifier interface {
	RequestPermission()
	PhaseComplete(finished, next Phase)
}

type nopNotifier struct{}

func (nopNotifier) RequestPermission() {}
func (nopNotifier) PhaseComplete(Phase, Phase) {}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithResumePolicy(p ResumePolicy) Option {
	return func(c *Controller) { c.state.Policy = p }
}

// Controller runs the timer state machine. Transitions apply immediately
// under the lock; recorder calls run in order on a single worker goroutine so
// a slow or failing recorder never holds up the countdown. Recorder failures
// are logged and never undo a transition.
type Controller struct {
	mu       sync.Mutex
	state    State
	rec      Recorder
	notifier Notifier
	now      func() time.Time
	log      logging.Logger

	qmu     sync.Mutex
	qcond   *sync.Cond
	queue   []job
	busy    bool
	closing bool
	stopped chan struct{}

	// interval -> session id, owned by the worker. Zero marks a failed create.
	ids map[int64]int64
}

type job struct {
	ctx context.Context
	eff Effect
}

// NewController starts the recorder worker. Call Close to drain it.
func NewController(rec Recorder, opts ...Option) *Controller {
	c := &Controller{
		state:    NewState(ResumeNewSession),
		rec:      rec,
		notifier: nopNotifier{},
		now:      time.Now,
		log:      logging.Discard(),
		stopped:  make(chan struct{}),
		ids:      make(map[int64]int64),
	}
	c.qcond = sync.NewCond(&c.qmu)
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

func (c *Controller) Start(ctx context.Context) { c.dispatch(ctx, Event{Kind: EventStart}) }
func (c *Controller) Pause(ctx context.Context) { c.dispatch(ctx, Event{Kind: EventPause}) }
func (c *Controller) Reset(ctx context.Context) { c.dispatch(ctx, Event{Kind: EventReset}) }

// Tick advances the countdown by one second. It is a no-op while paused.
func (c *Controller) Tick(ctx context.Context) { c.dispatch(ctx, Event{Kind: EventTick}) }

func (c *Controller) SwitchMode(ctx context.Context, p Phase) {
	c.dispatch(ctx, Event{Kind: EventSwitchMode, Phase: p})
}

// StartWithTodo binds todo and starts a work phase for it. A session that
// is still active is finalized as cancelled first.
func (c *Controller) StartWithTodo(ctx context.Context, todo TodoRef) {
	c.dispatch(ctx, Event{Kind: EventStartWithTodo, Todo: &todo})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Flush blocks until every recorder call queued so far has returned.
func (c *Controller) Flush() {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	for len(c.queue) > 0 || c.busy {
		c.qcond.Wait()
	}
}

// Close drains pending recorder calls and stops the worker. Effects
// dispatched afterwards are dropped.
func (c *Controller) Close() {
	c.qmu.Lock()
	if !c.closing {
		c.closing = true
		c.qcond.Broadcast()
	}
	c.qmu.Unlock()
	<-c.stopped
}

func (c *Controller) dispatch(ctx context.Context, ev Event) {
	c.mu.Lock()
	next, effects := Transition(c.state, ev, c.now())
	c.state = next
	var notices []Effect
	for _, eff := range effects {
		switch eff.Kind {
		case EffectRequestPermission, EffectPhaseComplete:
			notices = append(notices, eff)
		default:
			c.enqueue(ctx, eff)
		}
	}
	c.mu.Unlock()

	for _, eff := range notices {
		if eff.Kind == EffectRequestPermission {
			c.notifier.RequestPermission()
		} else {
			c.notifier.PhaseComplete(eff.Finished, eff.Next)
		}
	}
}

// enqueue is called with c.mu held so effects keep transition order.
func (c *Controller) enqueue(ctx context.Context, eff Effect) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if c.closing {
		c.log.Warn(ctx, "controller closed, dropping session write", "interval", eff.Interval)
		return
	}
	c.queue = append(c.queue, job{ctx: context.WithoutCancel(ctx), eff: eff})
	c.qcond.Broadcast()
}

func (c *Controller) run() {
	defer close(c.stopped)
	for {
		c.qmu.Lock()
		for len(c.queue) == 0 && !c.closing {
			c.qcond.Wait()
		}
		if len(c.queue) == 0 {
			c.qmu.Unlock()
			return
		}
		j := c.queue[0]
		c.queue = c.queue[1:]
		c.busy = true
		c.qmu.Unlock()

		c.persist(j.ctx, j.eff)

		c.qmu.Lock()
		c.busy = false
		c.qcond.Broadcast()
		c.qmu.Unlock()
	}
}

func (c *Controller) persist(ctx context.Context, eff Effect) {
	switch eff.Kind {
	case EffectCreateSession:
		sess, err := c.rec.CreateSession(ctx, eff.Create)
		if err != nil {
			c.log.Warn(ctx, "create session failed", "type", eff.Create.Type, "error", err)
			c.ids[eff.Interval] = 0
			c.patchActive(eff.Interval, func(s *State) { s.Active = nil })
			return
		}
		c.ids[eff.Interval] = sess.ID
		c.patchActive(eff.Interval, func(s *State) { s.Active.ID = sess.ID })
		c.log.Debug(ctx, "session started", "id", sess.ID, "type", sess.Type)

	case EffectUpdateSession:
		id := c.ids[eff.Interval]
		if id == 0 {
			return
		}
		if _, err := c.rec.UpdateSession(ctx, id, eff.Actual); err != nil {
			c.log.Warn(ctx, "update session failed", "id", id, "error", err)
		}

	case EffectFinalizeSession:
		id := c.ids[eff.Interval]
		delete(c.ids, eff.Interval)
		if id == 0 {
			return
		}
		if _, err := c.rec.FinalizeSession(ctx, id, eff.Actual, eff.At, eff.Status); err != nil {
			c.log.Warn(ctx, "finalize session failed", "id", id, "status", eff.Status, "error", err)
			return
		}
		c.log.Debug(ctx, "session finalized", "id", id, "status", eff.Status, "actual", eff.Actual)
	}
}

// patchActive applies fn when the interval is still the active one.
func (c *Controller) patchActive(interval int64, fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Active != nil && c.state.Active.Interval == interval {
		fn(&c.state)
	}
}
