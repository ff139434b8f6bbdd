package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../../migrations/orders",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(ownerID string) *domain.Order {
	return &domain.Order{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		RestaurantID:   "rest1",
		RestaurantName: "Pizza Corner",
		DeliveryAddress: domain.Address{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
		},
		Lines: []domain.OrderLine{
			{ItemID: "a", Name: "Margherita", UnitPrice: 100, Quantity: 3},
		},
		Subtotal:          300,
		DeliveryFee:       0,
		Tax:               15,
		Total:             315,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		EstimatedDelivery: time.Now().Add(35 * time.Minute),
	}
}

func newTestEvent(order *domain.Order) *OutboxEvent {
	payload, _ := json.Marshal(map[string]string{
		"order_id": order.ID.String(),
		"owner_id": order.OwnerID,
	})
	return &OutboxEvent{
		ID:          uuid.New(),
		AggregateID: order.ID.String(),
		EventType:   "order_created",
		Payload:     payload,
	}
}

func TestCreate_PersistsOrderAndEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("user123")
	err := repo.Create(ctx, order, newTestEvent(order))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OwnerID, got.OwnerID)
	assert.Equal(t, order.RestaurantID, got.RestaurantID)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)
	assert.Len(t, got.Lines, 1)
	assert.Equal(t, 315.0, got.Total)
	assert.Equal(t, "Springfield", got.DeliveryAddress.City)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, order.ID.String(), events[0].AggregateID)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListByOwner_PaginatesNewestFirst(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		order := newTestOrder("user123")
		require.NoError(t, repo.Create(ctx, order, newTestEvent(order)))
	}
	other := newTestOrder("someone-else")
	require.NoError(t, repo.Create(ctx, other, newTestEvent(other)))

	orders, total, err := repo.ListByOwner(ctx, "user123", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, orders, 3)

	orders, total, err = repo.ListByOwner(ctx, "user123", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, orders, 2)
}

func TestUpdateStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("user123")
	require.NoError(t, repo.Create(ctx, order, newTestEvent(order)))

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparing, updated.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusPreparing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdatePaymentStatus_CompletedConfirmsOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("user123")
	require.NoError(t, repo.Create(ctx, order, newTestEvent(order)))

	updated, err := repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, updated.PaymentStatus)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, "pay-1", updated.PaymentRef)
}

func TestUpdatePaymentStatus_FailedLeavesOrderPending(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("user123")
	require.NoError(t, repo.Create(ctx, order, newTestEvent(order)))

	updated, err := repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, updated.PaymentStatus)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)
}

func TestMarkEventAsProcessed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := newTestOrder("user123")
	require.NoError(t, repo.Create(ctx, order, newTestEvent(order)))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	err = repo.MarkEventAsProcessed(ctx, events[0].ID)
	require.NoError(t, err)

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMarkEventAsProcessed_UnknownEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.MarkEventAsProcessed(context.Background(), uuid.New())
	assert.Error(t, err)
}
