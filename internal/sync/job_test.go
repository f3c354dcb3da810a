package sync_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
	orderdb "qr-admin-service/internal/orders/db"
	"qr-admin-service/internal/sse"
	syncjob "qr-admin-service/internal/sync"
	ticketdb "qr-admin-service/internal/tickets/db"
)

// FakeGHL serves canned orders; IDs absent from the map fail the fetch.
type FakeGHL struct {
	orders map[string]*models.GHLOrder
	calls  int
}

func (f *FakeGHL) GetOrder(_ context.Context, orderID string) (*models.GHLOrder, error) {
	f.calls++
	order, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("order not found upstream")
	}
	return order, nil
}

func ghlOrder(id string, vip, general int) *models.GHLOrder {
	order := &models.GHLOrder{
		ID:            id,
		PaymentStatus: "paid",
		Contact:       models.GHLContact{ID: "contact-1", Name: "Alice", Email: "alice@example.com"},
		Amount:        float64(vip*150 + general*50),
		Currency:      "USD",
	}
	if vip > 0 {
		order.Items = append(order.Items, models.GHLLineItem{
			Price:   models.GHLPrice{ID: "price-vip", Name: "VIP", Amount: 150},
			Product: models.GHLProduct{ID: "prod-1", Name: "Summer Gala"},
			Qty:     vip,
		})
	}
	if general > 0 {
		order.Items = append(order.Items, models.GHLLineItem{
			Price:   models.GHLPrice{ID: "price-gen", Name: "General", Amount: 50},
			Product: models.GHLProduct{ID: "prod-1", Name: "Summer Gala"},
			Qty:     general,
		})
	}
	return order
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { _ = redisContainer.Terminate(ctx) })

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { client.Close() })
	return client
}

func setupStores(t *testing.T) (*orderdb.DB, *ticketdb.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Order)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Ticket)(nil)))

	return &orderdb.DB{Bun: bunDB}, &ticketdb.DB{Bun: bunDB}
}

func writeOrderList(t *testing.T, ids string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valid_order_list.json")
	require.NoError(t, os.WriteFile(path, []byte(ids), 0644))
	return path
}

func newTestJob(t *testing.T, ghl *FakeGHL, orderListPath string, client *redis.Client) *syncjob.Job {
	t.Helper()

	log := logger.NewLogger()
	t.Cleanup(log.Close)

	orders, tickets := setupStores(t)
	return &syncjob.Job{
		GHL:         ghl,
		Orders:      orders,
		Tickets:     tickets,
		Status:      syncjob.NewStatusStore(client),
		Broadcaster: sse.NewBroadcaster(),
		Logger:      log,

		OrderListPath: orderListPath,
		DelaySeconds:  0,
		LockTTL:       time.Minute,
	}
}

func TestRunSyncsOrdersAndTopsUpTickets(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	ghl := &FakeGHL{orders: map[string]*models.GHLOrder{
		"order-1": ghlOrder("order-1", 2, 1),
		"order-2": ghlOrder("order-2", 0, 3),
	}}
	path := writeOrderList(t, `{"order_ids": ["order-1", "order-2", "order-broken"]}`)
	job := newTestJob(t, ghl, path, client)

	require.NoError(t, job.Run(ctx))

	ticketStore := job.Tickets.(*ticketdb.DB)
	vip, err := ticketStore.CountByOrderAndType(ctx, "order-1", "VIP")
	require.NoError(t, err)
	assert.Equal(t, 2, vip)

	general, err := ticketStore.CountByOrderAndType(ctx, "order-1", "General")
	require.NoError(t, err)
	assert.Equal(t, 1, general)

	general2, err := ticketStore.CountByOrderAndType(ctx, "order-2", "General")
	require.NoError(t, err)
	assert.Equal(t, 3, general2)

	// The broken order is skipped, never aborting the run.
	status, err := job.Status.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateComplete, status.State)
	assert.False(t, status.SyncInProgress)
	assert.Equal(t, 3, status.TotalOrders)
	assert.Equal(t, 2, status.SyncedOrders)
	assert.Equal(t, 1, status.FailedOrders)
	assert.Equal(t, 6, status.SyncedTickets)
}

func TestRunIsIdempotent(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	ghl := &FakeGHL{orders: map[string]*models.GHLOrder{
		"order-1": ghlOrder("order-1", 2, 0),
	}}
	path := writeOrderList(t, `["order-1"]`)
	job := newTestJob(t, ghl, path, client)

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	ticketStore := job.Tickets.(*ticketdb.DB)
	vip, err := ticketStore.CountByOrderAndType(ctx, "order-1", "VIP")
	require.NoError(t, err)
	assert.Equal(t, 2, vip, "re-running the sync must not duplicate tickets")
}

func TestRunTopsUpAfterQuantityIncrease(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	ghl := &FakeGHL{orders: map[string]*models.GHLOrder{
		"order-1": ghlOrder("order-1", 2, 0),
	}}
	path := writeOrderList(t, `["order-1"]`)
	job := newTestJob(t, ghl, path, client)

	require.NoError(t, job.Run(ctx))

	// The customer buys two more VIP tickets between runs.
	ghl.orders["order-1"] = ghlOrder("order-1", 4, 0)
	require.NoError(t, job.Run(ctx))

	ticketStore := job.Tickets.(*ticketdb.DB)
	vip, err := ticketStore.CountByOrderAndType(ctx, "order-1", "VIP")
	require.NoError(t, err)
	assert.Equal(t, 4, vip, "only the delta should be inserted")
}

func TestRunRejectsConcurrentTrigger(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	ghl := &FakeGHL{orders: map[string]*models.GHLOrder{}}
	path := writeOrderList(t, `[]`)
	job := newTestJob(t, ghl, path, client)

	// Another run already holds the lock.
	acquired, err := job.Status.AcquireLock(ctx, "other-run", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	err = job.Run(ctx)
	require.ErrorIs(t, err, syncjob.ErrSyncInProgress)
}

func TestSyncOneDoesNotTouchTheLock(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	ghl := &FakeGHL{orders: map[string]*models.GHLOrder{
		"order-1": ghlOrder("order-1", 1, 0),
	}}
	path := writeOrderList(t, `[]`)
	job := newTestJob(t, ghl, path, client)

	inserted, err := job.SyncOne(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// The run lock stays free for a full run.
	acquired, err := job.Status.AcquireLock(ctx, "run-after-webhook", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestLoadOrderList(t *testing.T) {
	path := writeOrderList(t, `["a", "b"]`)
	ids, err := syncjob.LoadOrderList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	wrapped := writeOrderList(t, `{"order_ids": ["x"]}`)
	ids, err = syncjob.LoadOrderList(wrapped)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids)

	_, err = syncjob.LoadOrderList(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	garbage := writeOrderList(t, `{"nope": 1`)
	_, err = syncjob.LoadOrderList(garbage)
	require.Error(t, err)
}
