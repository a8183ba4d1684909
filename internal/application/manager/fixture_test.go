package manager

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

var (
	alice   = customer.Customer{ID: "1", Name: "Alice", Email: "alice@example.com", Phone: "555-123-4567", Address: "1 Long Street, Springfield"}
	bob     = customer.Customer{ID: "2", Name: "Bob", Email: "bob@example.com", Phone: "555-222-3333"}
	charlie = customer.Customer{ID: "3", Name: "Charlie", Email: "charlie@example.com", Phone: "555-444-5555"}
)

// fakeAPI is an in-memory CustomerAPI. When gate is set, List blocks until
// the gate closes or the view's context is cancelled.
type fakeAPI struct {
	mu        sync.Mutex
	list      []customer.Customer
	gate      chan struct{}
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	nextID    int
	created   []customer.Customer
	updated   []customer.Customer
	deleted   []customer.ID
}

func newFakeAPI(list ...customer.Customer) *fakeAPI {
	return &fakeAPI{list: list}
}

func (f *fakeAPI) List(ctx context.Context) ([]customer.Customer, error) {
	f.mu.Lock()
	gate, err, list := f.gate, f.listErr, customer.Clone(f.list)
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeAPI) Create(_ context.Context, in customer.Customer) (customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return customer.Customer{}, f.createErr
	}
	f.nextID++
	in.ID = customer.ID(strconv.Itoa(100 + f.nextID))
	f.created = append(f.created, in)
	return in, nil
}

func (f *fakeAPI) Update(_ context.Context, id customer.ID, in customer.Customer) (customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return customer.Customer{}, f.updateErr
	}
	in.ID = id
	f.updated = append(f.updated, in)
	return in, nil
}

func (f *fakeAPI) Delete(_ context.Context, id customer.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) calls() (created, updated int, deleted []customer.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created), len(f.updated), append([]customer.ID(nil), f.deleted...)
}

// slowTimings keeps every timer from firing during a test
func slowTimings() Timings {
	return Timings{
		CacheCopyDelay:     time.Hour,
		DraftInterval:      time.Hour,
		MessageTTL:         time.Hour,
		SearchDebounce:     time.Hour,
		StaleCheckInterval: time.Hour,
	}
}

func fastTimings() Timings {
	return Timings{
		CacheCopyDelay:     40 * time.Millisecond,
		DraftInterval:      30 * time.Millisecond,
		MessageTTL:         150 * time.Millisecond,
		SearchDebounce:     10 * time.Millisecond,
		StaleCheckInterval: 50 * time.Millisecond,
	}
}

type fixture struct {
	api     *fakeAPI
	durable *cache.MemoryStorage
	session *cache.MemoryStorage
	view    *View
}

func mount(t *testing.T, api *fakeAPI, timings Timings, opts ...Option) *fixture {
	t.Helper()
	return mountWith(t, api, cache.NewMemoryStorage(), cache.NewMemoryStorage(), timings, opts...)
}

func mountWith(t *testing.T, api *fakeAPI, durable, session *cache.MemoryStorage, timings Timings, opts ...Option) *fixture {
	t.Helper()
	opts = append([]Option{WithTimings(timings)}, opts...)
	v := New(api, durable, session, opts...)
	t.Cleanup(func() {
		_ = v.Close()
		_ = durable.Close()
		_ = session.Close()
	})
	return &fixture{api: api, durable: durable, session: session, view: v}
}

// waitFor polls snapshots until cond holds and returns the matching one
func waitFor(t *testing.T, v *View, cond func(Snapshot) bool, msg string) Snapshot {
	t.Helper()
	var last Snapshot
	require.Eventually(t, func() bool {
		last = v.Snapshot()
		return cond(last)
	}, 3*time.Second, 5*time.Millisecond, msg)
	return last
}

func loaded(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return !s.Loading && len(s.Primary) == n }
}

func durableList(t *testing.T, s cache.Storage) []customer.Customer {
	t.Helper()
	list, ok, err := cache.GetJSON[[]customer.Customer](context.Background(), s, KeyCustomersCache)
	require.NoError(t, err)
	require.True(t, ok, "durable mirror is empty")
	return list
}

func fillForm(v *View, f customer.Form) {
	for _, field := range customer.Fields {
		v.ChangeField(field, f.Get(field))
	}
}

var validForm = customer.Form{
	Name:    "Dana Scully",
	Email:   "dana@fbi.gov",
	Phone:   "(202) 555-0147",
	Address: "935 Pennsylvania Avenue",
}

func names(list []customer.Customer) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}
