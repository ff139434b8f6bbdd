package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2005arun/Food-ordering/internal/cart/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// Upsert replaces the whole cart document so the lines and the recomputed
// totals land in a single atomic write.
func (m *mongoRepository) Upsert(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"owner_id": cart.OwnerID}
	doc := bson.M{
		"owner_id":        cart.OwnerID,
		"restaurant_id":   cart.RestaurantID,
		"restaurant_name": cart.RestaurantName,
		"lines":           cart.Lines,
		"subtotal":        cart.Subtotal,
		"delivery_fee":    cart.DeliveryFee,
		"tax":             cart.Tax,
		"total":           cart.Total,
		"created_at":      cart.CreatedAt,
		"updated_at":      cart.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// EnsureIndexes enforces one cart per owner and expires abandoned carts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
