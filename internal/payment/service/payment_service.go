package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
	"github.com/2005arun/Food-ordering/internal/payment/repository"
	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("validation failed")

	// ErrCrossServiceNotification marks a payment that settled locally but
	// could not inform the order store. It is logged and swallowed at this
	// boundary, never surfaced to the caller of Process.
	ErrCrossServiceNotification = errors.New("cross-service notification failed")
)

const paymentPortalBase = "https://payment-gateway.example.com/pay"

type PaymentService struct {
	repo          repository.PaymentRepository
	notifier      OrderNotifier
	notifyTimeout time.Duration
}

func NewPaymentService(repo repository.PaymentRepository, notifier OrderNotifier, notifyTimeout time.Duration) *PaymentService {
	return &PaymentService{
		repo:          repo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

type InitiateInput struct {
	OrderID string
	OwnerID string
	Amount  float64
	Method  domain.Method
	Card    *domain.CardSummary
}

type InitiateResult struct {
	PaymentID      string  `json:"paymentId"`
	TransactionRef string  `json:"transactionId"`
	Amount         float64 `json:"amount"`
	OrderID        string  `json:"orderId"`
	PaymentURL     string  `json:"paymentUrl"`
}

// Initiate creates the payment record for an order in INITIATED state and
// hands the caller a transaction ref for the gateway callback. A second
// initiation for the same order fails with ErrDuplicatePayment.
func (s *PaymentService) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if !in.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.Method)
	}

	payment := &domain.Payment{
		ID:      uuid.New().String(),
		OrderID: in.OrderID,
		OwnerID: in.OwnerID,
		Amount:  in.Amount,
		Method:  in.Method,
		Status:  domain.StatusInitiated,
		Card:    in.Card,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	ref := newTransactionRef()
	return &InitiateResult{
		PaymentID:      payment.ID,
		TransactionRef: ref,
		Amount:         in.Amount,
		OrderID:        in.OrderID,
		PaymentURL:     fmt.Sprintf("%s/%s", paymentPortalBase, ref),
	}, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PaymentService) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// Process is the simulated gateway callback. The payment advances through
// PROCESSING to its final state no matter what happens to the order-store
// notification in between: that call is best-effort with a bounded timeout,
// and its failure is logged and swallowed. Order and payment records may
// disagree until someone reconciles them; that trade is accepted here.
func (s *PaymentService) Process(ctx context.Context, paymentID, transactionRef string, outcome domain.Outcome) (*domain.Payment, error) {
	if strings.TrimSpace(transactionRef) == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrValidation)
	}
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: status must be COMPLETED or FAILED", ErrValidation)
	}

	transient := domain.StatusProcessing
	if outcome == domain.OutcomeFailed {
		transient = domain.StatusFailed
	}

	now := time.Now()
	payment, err := s.repo.UpdateStatus(ctx, paymentID, repository.StatusUpdate{
		Status:          transient,
		TransactionRef:  transactionRef,
		TransactionTime: &now,
	})
	if err != nil {
		return nil, err
	}

	s.notifyOrderStore(ctx, payment, outcome)

	final := domain.StatusCompleted
	if outcome == domain.OutcomeFailed {
		final = domain.StatusFailed
	}
	if final != transient {
		payment, err = s.repo.UpdateStatus(ctx, paymentID, repository.StatusUpdate{Status: final})
		if err != nil {
			return nil, err
		}
	}

	return payment, nil
}

// Refund unconditionally marks the payment REFUNDED. The current status is
// not checked and the linked order is not touched. Known limitation.
func (s *PaymentService) Refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.repo.UpdateStatus(ctx, paymentID, repository.StatusUpdate{Status: domain.StatusRefunded})
}

func (s *PaymentService) notifyOrderStore(ctx context.Context, payment *domain.Payment, outcome domain.Outcome) {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyPaymentStatus(notifyCtx, payment.OrderID, outcome, payment.ID); err != nil {
		log.Printf("%v: order %s payment %s: %v",
			ErrCrossServiceNotification, payment.OrderID, payment.ID, err)
	}
}

// newTransactionRef synthesizes a globally unique, unguessable reference in
// the gateway's TXN_<millis>_<suffix> shape.
func newTransactionRef() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return fmt.Sprintf("TXN_%d_%010X", time.Now().UnixMilli(), buf)
}
