package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// OrderLine is a snapshot copy of a cart line at submission time. Catalog
// changes after ordering never alter historical orders.
type OrderLine struct {
	ItemID    string  `json:"menuItemId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image,omitempty"`
}

// Order is immutable after creation except for its two status fields, which
// are independent state machines and may disagree transiently. Orders are
// never physically deleted; cancellation is a status.
type Order struct {
	ID                  uuid.UUID     `json:"id"`
	OwnerID             string        `json:"userId"`
	RestaurantID        string        `json:"restaurantId"`
	RestaurantName      string        `json:"restaurantName"`
	DeliveryAddress     Address       `json:"deliveryAddress"`
	Lines               []OrderLine   `json:"items"`
	Subtotal            float64       `json:"subtotal"`
	DeliveryFee         float64       `json:"deliveryFee"`
	Tax                 float64       `json:"tax"`
	Total               float64       `json:"total"`
	Status              OrderStatus   `json:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	PaymentRef          string        `json:"paymentId,omitempty"`
	SpecialInstructions string        `json:"specialInstructions,omitempty"`
	EstimatedDelivery   time.Time     `json:"estimatedDelivery"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}
