// Package checkout drives the client-side settlement sequence: read the
// priced cart, create the order, initiate and process the payment, then
// follow the order until its status reflects settlement. There is no
// distributed transaction behind this; the order creation is the
// irreversible checkpoint, and everything after it is recoverable by
// re-querying the payment and re-processing.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartdomain "github.com/2005arun/Food-ordering/internal/cart/domain"
	orderdomain "github.com/2005arun/Food-ordering/internal/order/domain"
	paydomain "github.com/2005arun/Food-ordering/internal/payment/domain"
	paysvc "github.com/2005arun/Food-ordering/internal/payment/service"
	"github.com/2005arun/Food-ordering/internal/pricing"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

type CartAPI interface {
	Get(ctx context.Context, ownerID string) (*cartdomain.Cart, error)
}

type OrderAPI interface {
	Create(ctx context.Context, req CreateOrderRequest) (*orderdomain.Order, error)
	Get(ctx context.Context, orderID string) (*orderdomain.Order, error)
}

type PaymentAPI interface {
	Initiate(ctx context.Context, req InitiatePaymentRequest) (*paysvc.InitiateResult, error)
	Process(ctx context.Context, paymentID, transactionRef string, outcome paydomain.Outcome) (*paydomain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*paydomain.Payment, error)
}

type Coordinator struct {
	Carts        CartAPI
	Orders       OrderAPI
	Payments     PaymentAPI
	Pricing      pricing.Config
	PollInterval time.Duration
}

func NewCoordinator(carts CartAPI, orders OrderAPI, payments PaymentAPI) *Coordinator {
	return &Coordinator{
		Carts:        carts,
		Orders:       orders,
		Payments:     payments,
		Pricing:      pricing.DefaultConfig(),
		PollInterval: time.Second,
	}
}

type PlaceOrderInput struct {
	OwnerID             string
	DeliveryAddress     orderdomain.Address
	Method              paydomain.Method
	Card                *paydomain.CardSummary
	Outcome             paydomain.Outcome
	SpecialInstructions string
}

type Settlement struct {
	Order          *orderdomain.Order
	Payment        *paydomain.Payment
	TransactionRef string
}

// PlaceOrder runs the settlement sequence. A failure before order creation
// leaves the cart intact; a failure after it leaves a PENDING order whose
// payment can be re-queried and re-processed.
func (c *Coordinator) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Settlement, error) {
	cart, err := c.Carts.Get(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if cart == nil || len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Recompute totals from the live lines rather than trusting the stored
	// numbers blindly; the calculation is the same deterministic function
	// the cart store ran.
	priceLines := make([]pricing.Line, len(cart.Lines))
	items := make([]orderdomain.OrderLine, len(cart.Lines))
	for i, l := range cart.Lines {
		priceLines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
		items[i] = orderdomain.OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			ImageRef:  l.ImageRef,
		}
	}
	totals := c.Pricing.Calculate(priceLines)

	order, err := c.Orders.Create(ctx, CreateOrderRequest{
		UserID:              in.OwnerID,
		RestaurantID:        cart.RestaurantID,
		RestaurantName:      cart.RestaurantName,
		DeliveryAddress:     in.DeliveryAddress,
		Items:               items,
		Subtotal:            totals.Subtotal,
		DeliveryFee:         totals.DeliveryFee,
		Tax:                 totals.Tax,
		Total:               totals.Total,
		SpecialInstructions: in.SpecialInstructions,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	initiated, err := c.Payments.Initiate(ctx, InitiatePaymentRequest{
		OrderID:       order.ID.String(),
		UserID:        in.OwnerID,
		Amount:        totals.Total,
		PaymentMethod: string(in.Method),
		CardDetails:   in.Card,
	})
	if err != nil {
		return nil, fmt.Errorf("initiate payment for order %s: %w", order.ID, err)
	}

	payment, err := c.Payments.Process(ctx, initiated.PaymentID, initiated.TransactionRef, in.Outcome)
	if err != nil {
		return nil, fmt.Errorf("process payment for order %s: %w", order.ID, err)
	}

	return &Settlement{
		Order:          order,
		Payment:        payment,
		TransactionRef: initiated.TransactionRef,
	}, nil
}

// AwaitSettlement polls the order store until the order's payment status
// matches want or the context expires. Polling is the only subscription
// mechanism there is.
func (c *Coordinator) AwaitSettlement(ctx context.Context, orderID string, want orderdomain.PaymentStatus) (*orderdomain.Order, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		order, err := c.Orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus == want {
			return order, nil
		}

		select {
		case <-ctx.Done():
			return order, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RecoverPayment re-reads the payment for an order so a failed settlement
// can be re-processed against the same payment record.
func (c *Coordinator) RecoverPayment(ctx context.Context, orderID string) (*paydomain.Payment, error) {
	return c.Payments.GetByOrderID(ctx, orderID)
}
