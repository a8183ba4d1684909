package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher hands a fired task's callback to whoever owns its state.
// The default runs callbacks on the timer goroutine.
type Dispatcher func(fn func())

// Task is a delayed or repeating callback owned by a Group
type Task struct {
	id     uint64
	name   string
	period time.Duration
	group  *Group
	stop   chan struct{}
	once   sync.Once
	err    error
}

// Name returns the task label
func (t *Task) Name() string {
	return t.name
}

// Repeating reports whether the task fires on a period
func (t *Task) Repeating() bool {
	return t.period > 0
}

// Err reports why the task was never started, if it wasn't
func (t *Task) Err() error {
	return t.err
}

// Cancel stops the task; a callback already handed to the dispatcher still runs.
// Safe to call multiple times.
func (t *Task) Cancel() {
	t.once.Do(func() {
		close(t.stop)
		if t.group != nil {
			t.group.forget(t.id)
		}
	})
}

// Group owns a set of scheduled tasks and cancels all of them on Close
type Group struct {
	dispatch Dispatcher
	logger   *zap.Logger

	mu     sync.Mutex
	tasks  map[uint64]*Task
	nextID uint64
	closed bool
	wg     sync.WaitGroup
}

// GroupOption configures a Group
type GroupOption func(*Group)

// WithDispatcher routes fired callbacks through d
func WithDispatcher(d Dispatcher) GroupOption {
	return func(g *Group) {
		g.dispatch = d
	}
}

// WithLogger sets the logger for the group
func WithLogger(logger *zap.Logger) GroupOption {
	return func(g *Group) {
		g.logger = logger
	}
}

// NewGroup creates an empty task group
func NewGroup(opts ...GroupOption) *Group {
	g := &Group{
		dispatch: func(fn func()) { fn() },
		logger:   zap.NewNop(),
		tasks:    make(map[uint64]*Task),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// After runs fn once after delay
func (g *Group) After(name string, delay time.Duration, fn func()) *Task {
	t, ok := g.register(name, 0)
	if !ok {
		return t
	}
	go func() {
		defer g.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-t.stop:
			return
		case <-timer.C:
		}
		// forget before dispatching so Pending never counts a fired one-shot
		t.Cancel()
		g.dispatch(fn)
	}()
	return t
}

// Every runs fn on each period until the task or group is cancelled
func (g *Group) Every(name string, period time.Duration, fn func()) *Task {
	if period <= 0 {
		t := &Task{name: name, period: period, stop: make(chan struct{}), err: ErrInvalidPeriod}
		t.Cancel()
		return t
	}
	t, ok := g.register(name, period)
	if !ok {
		return t
	}
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				g.dispatch(fn)
			}
		}
	}()
	return t
}

// Pending returns the number of tasks that can still fire
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// Close cancels every task and waits for their goroutines to exit.
// Safe to call multiple times.
func (g *Group) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	tasks := make([]*Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		tasks = append(tasks, t)
	}
	g.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	g.wg.Wait()
	g.logger.Debug("Task group closed", zap.Int("cancelled", len(tasks)))
}

func (g *Group) register(name string, period time.Duration) (*Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		t := &Task{name: name, period: period, stop: make(chan struct{}), err: ErrGroupClosed}
		t.Cancel()
		return t, false
	}

	g.nextID++
	t := &Task{
		id:     g.nextID,
		name:   name,
		period: period,
		group:  g,
		stop:   make(chan struct{}),
	}
	g.tasks[t.id] = t
	g.wg.Add(1)
	return t, true
}

func (g *Group) forget(id uint64) {
	g.mu.Lock()
	delete(g.tasks, id)
	g.mu.Unlock()
}
