package repository

import (
	"context"
	"errors"

	"github.com/2005arun/Food-ordering/internal/cart/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}
