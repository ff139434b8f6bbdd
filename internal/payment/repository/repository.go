package repository

import (
	"context"
	"errors"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already initiated for this order")
)

// StatusUpdate describes one atomic change to a payment record. Only the
// fields carried are written; an empty TransactionRef or nil TransactionTime
// leaves the stored value untouched.
type StatusUpdate struct {
	Status          domain.Status
	TransactionRef  string
	TransactionTime *time.Time
	ErrorDetail     string
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Payment, error)
}
