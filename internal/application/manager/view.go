package manager

import (
	"context"
	"sync"
	"time"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"github.com/contactdesk/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// maxFlushPasses bounds how many times reactive rules may re-trigger each
// other after a single task
const maxFlushPasses = 32

// Timings are the delays and periods used by the timed rules
type Timings struct {
	CacheCopyDelay     time.Duration
	DraftInterval      time.Duration
	MessageTTL         time.Duration
	SearchDebounce     time.Duration
	StaleCheckInterval time.Duration
	// SupersedeTimers cancels a rule's previous task when it schedules a new
	// one. Off by default: tasks accumulate until the view closes.
	SupersedeTimers bool
}

// DefaultTimings returns the stock delays
func DefaultTimings() Timings {
	return Timings{
		CacheCopyDelay:     500 * time.Millisecond,
		DraftInterval:      2 * time.Second,
		MessageTTL:         3 * time.Second,
		SearchDebounce:     300 * time.Millisecond,
		StaleCheckInterval: 5 * time.Second,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.CacheCopyDelay <= 0 {
		t.CacheCopyDelay = d.CacheCopyDelay
	}
	if t.DraftInterval <= 0 {
		t.DraftInterval = d.DraftInterval
	}
	if t.MessageTTL <= 0 {
		t.MessageTTL = d.MessageTTL
	}
	if t.SearchDebounce <= 0 {
		t.SearchDebounce = d.SearchDebounce
	}
	if t.StaleCheckInterval <= 0 {
		t.StaleCheckInterval = d.StaleCheckInterval
	}
	return t
}

// Option configures a View
type Option func(*View)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		v.logger = logger
	}
}

// WithMetrics sets the metrics collectors
func WithMetrics(m *Metrics) Option {
	return func(v *View) {
		v.metrics = m
	}
}

// WithTimings overrides the rule delays
func WithTimings(t Timings) Option {
	return func(v *View) {
		v.timings = t
	}
}

// WithClock overrides time.Now for lastSaved stamps
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		v.now = now
	}
}

type dep uint16

const (
	depMount dep = 1 << iota
	depPrimary
	depSecondary
	depSearch
	depSort
	depForm
	depSuccess
	depError

	depAll = depMount | depPrimary | depSecondary | depSearch | depSort | depForm | depSuccess | depError
)

// state is owned by the loop goroutine
type state struct {
	primary              *PrimarySlot
	secondary            *SecondarySlot
	form                 customer.Form
	fieldErrors          map[customer.Field]string
	generalError         string
	successMessage       string
	errorMessage         string
	loading              bool
	editing              bool
	editingID            customer.ID
	showDeleteModal      bool
	deleteTargetID       customer.ID
	searchTerm           string
	sortBy               string
	sortOrder            string
	lastSaved            time.Time
	localStorageLoaded   bool
	sessionStorageLoaded bool
}

// View is one mounted customer manager. All state lives on a single loop
// goroutine; public methods post work to it and return immediately.
type View struct {
	api     CustomerAPI
	durable cache.Storage
	session cache.Storage
	logger  *zap.Logger
	metrics *Metrics
	timings Timings
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}

	tasks     *scheduler.Group
	net       sync.WaitGroup
	closeOnce sync.Once

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int

	// loop-owned
	st      state
	rules   []rule
	dirty   dep
	changed bool
	latest  map[string]*scheduler.Task
	final   Snapshot
}

// New mounts a view: it starts the loop and runs every rule once.
// durable backs the customers cache, session backs the preference, draft
// and last-touched entries. Close releases everything New started.
func New(api CustomerAPI, durable, session cache.Storage, opts ...Option) *View {
	v := &View{
		api:     api,
		durable: durable,
		session: session,
		logger:  zap.NewNop(),
		timings: DefaultTimings(),
		now:     time.Now,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		subs:    make(map[int]chan struct{}),
		latest:  make(map[string]*scheduler.Task),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.metrics == nil {
		v.metrics = NewMetrics(nil)
	}
	v.timings = v.timings.withDefaults()
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.tasks = scheduler.NewGroup(
		scheduler.WithDispatcher(func(fn func()) { v.post(fn) }),
		scheduler.WithLogger(v.logger),
	)
	v.st = state{
		primary:     newPrimarySlot(func() { v.mark(depPrimary) }),
		secondary:   newSecondarySlot(func() { v.mark(depSecondary) }),
		fieldErrors: make(map[customer.Field]string),
	}
	v.rules = v.buildRules()

	go v.run()
	v.post(func() { v.dirty |= depAll })
	return v
}

// Close cancels every scheduled task, stops the loop and waits for in-flight
// requests to return. Safe to call more than once.
func (v *View) Close() error {
	v.closeOnce.Do(func() {
		v.tasks.Close()

		v.mu.Lock()
		v.closed = true
		v.queue = nil
		v.mu.Unlock()
		v.signal()
		<-v.done

		v.cancel()
		v.net.Wait()

		v.subMu.Lock()
		for id, ch := range v.subs {
			close(ch)
			delete(v.subs, id)
		}
		v.subMu.Unlock()
		v.logger.Debug("Customer manager closed")
	})
	return nil
}

// Done is closed once the loop has stopped
func (v *View) Done() <-chan struct{} {
	return v.done
}

// PendingTasks returns the number of scheduled tasks that can still fire
func (v *View) PendingTasks() int {
	return v.tasks.Pending()
}

// Snapshot returns a copy of the current state. After Close it returns the
// state the view ended with.
func (v *View) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	if v.post(func() { reply <- v.snapshot() }) {
		select {
		case s := <-reply:
			return s
		case <-v.done:
		}
	}
	<-v.done
	return v.final
}

// Subscribe returns a channel that receives a signal after every loop task
// that changed state. Signals coalesce; the channel is closed by Close.
func (v *View) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	v.subMu.Lock()
	select {
	case <-v.done:
		v.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch
	v.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.subMu.Lock()
			if c, ok := v.subs[id]; ok {
				close(c)
				delete(v.subs, id)
			}
			v.subMu.Unlock()
		})
	}
}

// post queues fn for the loop. It never blocks and reports false once the
// view is closing.
func (v *View) post(fn func()) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	v.queue = append(v.queue, fn)
	v.mu.Unlock()
	v.signal()
	return true
}

// postSteps queues each step as its own task so other work can interleave
func (v *View) postSteps(steps ...func()) {
	for _, step := range steps {
		if !v.post(step) {
			return
		}
	}
}

func (v *View) signal() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *View) run() {
	defer func() {
		v.final = v.snapshot()
		close(v.done)
	}()
	for {
		fn, ok := v.next()
		if !ok {
			return
		}
		v.exec(fn)
	}
}

func (v *View) next() (func(), bool) {
	for {
		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			return nil, false
		}
		if len(v.queue) > 0 {
			fn := v.queue[0]
			v.queue[0] = nil
			v.queue = v.queue[1:]
			v.mu.Unlock()
			return fn, true
		}
		v.mu.Unlock()
		<-v.wake
	}
}

func (v *View) exec(fn func()) {
	fn()
	v.flush()
	if v.changed {
		v.changed = false
		v.notify()
	}
}

// flush runs the rules whose dependencies changed, repeating until nothing
// new is dirty
func (v *View) flush() {
	for pass := 0; v.dirty != 0; pass++ {
		if pass == maxFlushPasses {
			v.logger.Warn("Reactive rules did not settle", zap.Int("passes", pass))
			v.dirty = 0
			return
		}
		pending := v.dirty
		v.dirty = 0
		for _, r := range v.rules {
			if r.deps&pending == 0 {
				continue
			}
			v.metrics.IncrementRuleRun(r.name)
			v.logger.Debug("Rule fired", zap.String("rule", r.name))
			r.run(v)
		}
	}
}

func (v *View) notify() {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	for _, ch := range v.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (v *View) mark(d dep) {
	v.dirty |= d
	v.changed = true
}

func (v *View) touch() {
	v.changed = true
}

// goNet runs a request off the loop. Only called from the loop.
func (v *View) goNet(fn func(ctx context.Context)) {
	v.net.Add(1)
	go func() {
		defer v.net.Done()
		fn(v.ctx)
	}()
}

// after and every schedule a rule's timer; the callback runs on the loop
func (v *View) after(rule string, d time.Duration, fn func()) {
	v.track(rule, v.tasks.After(rule, d, v.fired(rule, fn)))
}

func (v *View) every(rule string, d time.Duration, fn func()) {
	v.track(rule, v.tasks.Every(rule, d, v.fired(rule, fn)))
}

func (v *View) fired(rule string, fn func()) func() {
	return func() {
		v.metrics.IncrementTimerFire(rule)
		fn()
	}
}

func (v *View) track(rule string, t *scheduler.Task) {
	if err := t.Err(); err != nil {
		v.logger.Debug("Task not scheduled", zap.String("rule", rule), zap.Error(err))
		return
	}
	if !v.timings.SupersedeTimers {
		return
	}
	if prev := v.latest[rule]; prev != nil {
		prev.Cancel()
	}
	v.latest[rule] = t
}
