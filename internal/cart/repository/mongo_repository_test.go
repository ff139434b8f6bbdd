package repository

import (
	"context"
	"testing"
	"time"

	"github.com/2005arun/Food-ordering/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	err = EnsureIndexes(ctx, db)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return NewMongoRepository(db), cleanup
}

func testCart(ownerID string) *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		OwnerID:        ownerID,
		RestaurantID:   "rest1",
		RestaurantName: "Pizza Corner",
		Lines: []domain.CartLine{
			{ItemID: "a", Name: "Margherita", UnitPrice: 100, Quantity: 2},
		},
		Subtotal:    200,
		DeliveryFee: 40,
		Tax:         10,
		Total:       250,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := repo.Get(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestUpsert_InsertsNewCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.Upsert(ctx, testCart("user123"))
	require.NoError(t, err)

	cart, err := repo.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", cart.OwnerID)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 250.0, cart.Total)
}

func TestUpsert_ReplacesExistingCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.Upsert(ctx, testCart("user123"))
	require.NoError(t, err)

	updated := testCart("user123")
	updated.Lines = append(updated.Lines, domain.CartLine{ItemID: "b", Name: "Garlic Bread", UnitPrice: 30, Quantity: 1})
	updated.Subtotal = 230
	updated.Total = 281.5
	err = repo.Upsert(ctx, updated)
	require.NoError(t, err)

	cart, err := repo.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 281.5, cart.Total)
}

func TestDelete_RemovesCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.Upsert(ctx, testCart("user123"))
	require.NoError(t, err)

	err = repo.Delete(ctx, "user123")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Delete(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond)

	_, err := repo.Get(ctx, "user123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
