//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/contactdesk/backend/internal/application/manager"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"github.com/contactdesk/backend/internal/infrastructure/customerapi"
	"github.com/contactdesk/backend/internal/infrastructure/persistence"
	"github.com/contactdesk/backend/tests/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var fastTimings = manager.Timings{
	CacheCopyDelay:     20 * time.Millisecond,
	DraftInterval:      50 * time.Millisecond,
	MessageTTL:         50 * time.Millisecond,
	SearchDebounce:     10 * time.Millisecond,
	StaleCheckInterval: time.Hour,
}

// newRedis starts a throwaway Redis and returns a storage on it
func newRedis(t *testing.T) *cache.RedisStorage {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start redis")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())

	store := cache.NewRedisStorageWithClient(client, "contactdesk:test:")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mountView(t *testing.T, endpoint string, durable cache.Storage) *manager.View {
	t.Helper()

	client, err := customerapi.NewClient(endpoint)
	require.NoError(t, err)
	session := cache.NewMemoryStorage()
	t.Cleanup(func() { _ = session.Close() })

	view := manager.New(client, durable, session, manager.WithTimings(fastTimings))
	t.Cleanup(func() { _ = view.Close() })
	return view
}

func cachedNames(t *testing.T, durable cache.Storage) []string {
	t.Helper()
	list, _, err := cache.GetJSON[[]customer.Customer](context.Background(), durable, manager.KeyCustomersCache)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	return names
}

// exerciseView drives a create, an edit and a delete through the view and
// checks that the collection and the durable mirror follow
func exerciseView(t *testing.T, col *testutil.CustomerCollection, durable cache.Storage) {
	t.Helper()
	ctx := context.Background()
	view := mountView(t, col.URL(), durable)

	testutil.Eventually(t, func() bool { return len(view.Snapshot().Primary) == 1 }, testutil.DefaultTimeout,
		"seeded customer loaded")
	testutil.Eventually(t, func() bool { return len(cachedNames(t, durable)) == 1 }, testutil.DefaultTimeout)

	view.ChangeField(customer.FieldName, "Bob")
	view.ChangeField(customer.FieldEmail, "bob@example.com")
	view.ChangeField(customer.FieldPhone, "5557654321")
	view.Submit()

	testutil.Eventually(t, func() bool {
		list, err := col.Store.List(ctx)
		return err == nil && len(list) == 2
	}, testutil.DefaultTimeout, "create reached the collection")
	testutil.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Alice", "Bob"}, cachedNames(t, durable))
	}, testutil.DefaultTimeout, "durable mirror holds both")

	stored, err := col.Store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	bobID := stored[1].ID

	view.StartEdit(bobID)
	testutil.Eventually(t, func() bool { return view.Snapshot().Editing }, testutil.DefaultTimeout)
	view.ChangeField(customer.FieldName, "Robert")
	view.Submit()
	testutil.Eventually(t, func() bool {
		got, err := col.Store.Get(ctx, bobID)
		return err == nil && got.Name == "Robert"
	}, testutil.DefaultTimeout, "update reached the collection")

	view.RequestDelete(bobID)
	view.ConfirmDelete()
	testutil.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Alice"}, cachedNames(t, durable))
	}, testutil.DefaultTimeout, "durable mirror follows the delete")

	_, err = col.Store.Get(ctx, bobID)
	assert.Error(t, err)
}

func TestManager_PostgresCollectionAndSQLMirror(t *testing.T) {
	tdb := NewSharedDB(t)
	repo := persistence.NewGormCustomerRepository(tdb.DB)
	require.NoError(t, repo.Create(context.Background(), &customer.Customer{
		ID: "seed-1", Name: "Alice", Email: "alice@example.com", Phone: "5551234567",
	}))
	col := testutil.NewCustomerCollection(t, repo)

	durable := cache.NewSQLStorage(tdb.DB, fmt.Sprintf("test-%d", time.Now().UnixNano()))
	require.NoError(t, durable.EnsureSchema(context.Background()))

	exerciseView(t, col, durable)
}

func TestManager_RedisMirror(t *testing.T) {
	col := testutil.NewCustomerCollection(t, nil, customer.Customer{
		ID: "seed-1", Name: "Alice", Email: "alice@example.com", Phone: "5551234567",
	})
	durable := newRedis(t)

	exerciseView(t, col, durable)

	t.Run("a second view starts from the mirror", func(t *testing.T) {
		unreachable := "http://127.0.0.1:1/customers"
		view := mountView(t, unreachable, durable)

		testutil.Eventually(t, func() bool {
			s := view.Snapshot()
			return s.LocalStorageLoaded && !s.Loading
		}, testutil.DefaultTimeout, "failed fetch settled")
		s := view.Snapshot()
		require.Len(t, s.Primary, 1)
		assert.Equal(t, "Alice", s.Primary[0].Name)
	})
}
