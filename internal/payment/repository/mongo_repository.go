package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) PaymentRepository {
	return &mongoRepository{
		collection: db.Collection("payments"),
	}
}

// Create inserts the payment. The unique index on order_id turns a second
// initiation for the same order into ErrDuplicatePayment.
func (m *mongoRepository) Create(ctx context.Context, payment *domain.Payment) error {
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

func (m *mongoRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return m.findOne(ctx, bson.M{"order_id": orderID})
}

func (m *mongoRepository) findOne(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	var payment domain.Payment

	err := m.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// UpdateStatus applies the whole status change in a single findOneAndUpdate
// so a reader never sees a payment with a new status but an old ref.
func (m *mongoRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Payment, error) {
	set := bson.M{
		"status":     update.Status,
		"updated_at": time.Now(),
	}
	if update.TransactionRef != "" {
		set["transaction_ref"] = update.TransactionRef
	}
	if update.TransactionTime != nil {
		set["transaction_time"] = *update.TransactionTime
	}
	if update.ErrorDetail != "" {
		set["error_detail"] = update.ErrorDetail
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment domain.Payment
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	return &payment, nil
}

// EnsureIndexes enforces the one-payment-per-order invariant at the store.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := db.Collection("payments").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
