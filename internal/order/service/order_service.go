package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	"github.com/2005arun/Food-ordering/internal/order/outbox"
	"github.com/2005arun/Food-ordering/internal/order/repository"
	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation failed")

// PreparationWindow is added to the submission time to estimate delivery.
const PreparationWindow = 35 * time.Minute

type OrderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

type CreateOrderInput struct {
	OwnerID             string
	RestaurantID        string
	RestaurantName      string
	DeliveryAddress     domain.Address
	Lines               []domain.OrderLine
	Subtotal            float64
	DeliveryFee         float64
	Tax                 float64
	Total               float64
	SpecialInstructions string
}

func (in *CreateOrderInput) validate() error {
	if strings.TrimSpace(in.OwnerID) == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if strings.TrimSpace(in.RestaurantID) == "" {
		return fmt.Errorf("%w: restaurantId is required", ErrValidation)
	}
	if strings.TrimSpace(in.DeliveryAddress.Street) == "" {
		return fmt.Errorf("%w: deliveryAddress.street is required", ErrValidation)
	}
	if strings.TrimSpace(in.DeliveryAddress.City) == "" {
		return fmt.Errorf("%w: deliveryAddress.city is required", ErrValidation)
	}
	if strings.TrimSpace(in.DeliveryAddress.State) == "" {
		return fmt.Errorf("%w: deliveryAddress.state is required", ErrValidation)
	}
	if strings.TrimSpace(in.DeliveryAddress.ZipCode) == "" {
		return fmt.Errorf("%w: deliveryAddress.zipCode is required", ErrValidation)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	return nil
}

// Create persists an immutable order from a submitted cart snapshot along
// with the outbox event that will clear the owner's cart. Validation happens
// before any state change.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		ID:                  uuid.New(),
		OwnerID:             in.OwnerID,
		RestaurantID:        in.RestaurantID,
		RestaurantName:      in.RestaurantName,
		DeliveryAddress:     in.DeliveryAddress,
		Lines:               in.Lines,
		Subtotal:            in.Subtotal,
		DeliveryFee:         in.DeliveryFee,
		Tax:                 in.Tax,
		Total:               in.Total,
		Status:              domain.OrderStatusPending,
		PaymentStatus:       domain.PaymentStatusPending,
		SpecialInstructions: in.SpecialInstructions,
		EstimatedDelivery:   now.Add(PreparationWindow),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":      order.ID.String(),
		"owner_id":      order.OwnerID,
		"restaurant_id": order.RestaurantID,
		"total":         order.Total,
		"created_at":    now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order event: %w", err)
	}

	event := &repository.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: order.ID.String(),
		EventType:   outbox.EventTypeOrderCreated,
		Payload:     payload,
	}

	if err := s.repo.Create(ctx, order, event); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

type OrderPage struct {
	Orders []*domain.Order
	Total  int64
	Page   int
	Limit  int
	Pages  int
}

func (s *OrderService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit
	orders, total, err := s.repo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderPage{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
		Pages:  pages,
	}, nil
}

// SetStatus overwrites the order status. There is no transition table: any
// status is reachable from any other, tracking progress rather than
// enforcing a workflow.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// SetPaymentStatus records the payment outcome and derives the order status
// from it: a completed payment confirms the order, anything else resets it
// to pending. The coupling holds for the first transition only; later order
// progress goes through SetStatus.
func (s *OrderService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paymentRef string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	if strings.TrimSpace(paymentRef) == "" {
		return nil, fmt.Errorf("%w: paymentId is required", ErrValidation)
	}
	return s.repo.UpdatePaymentStatus(ctx, id, status, paymentRef)
}

// Cancel forces the order to CANCELLED unconditionally, even when it was
// already delivered. Known limitation, kept on purpose.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.UpdateStatus(ctx, id, domain.OrderStatusCancelled)
}
