package repository

import (
	"context"
	"errors"
	"time"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a pending cross-store notification persisted in the same
// transaction as the order change it describes.
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type OrderRepository interface {
	// Create persists the order and its outbox event in one transaction.
	Create(ctx context.Context, order *domain.Order, event *OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	// UpdatePaymentStatus applies the payment status, the payment ref, and
	// the derived order status as a single atomic update.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paymentRef string) (*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error
	RunMigrations(*Credentials) error
	Close() error
}
