package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cartdomain "github.com/2005arun/Food-ordering/internal/cart/domain"
	orderdomain "github.com/2005arun/Food-ordering/internal/order/domain"
	paydomain "github.com/2005arun/Food-ordering/internal/payment/domain"
	paysvc "github.com/2005arun/Food-ordering/internal/payment/service"
	"github.com/2005arun/Food-ordering/pkg/circuitbreaker"
)

// envelope mirrors the {success, data|message} body every store answers with.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RequestError is a non-success answer from a store, carrying the HTTP
// status and the store's message.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

func doJSON(ctx context.Context, client circuitbreaker.Doer, method, url string, in, out interface{}) error {
	var body *bytes.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return &RequestError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data from %s: %w", url, err)
		}
	}
	return nil
}

type CartClient struct {
	BaseURL string
	Client  circuitbreaker.Doer
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{
		BaseURL: baseURL,
		Client:  circuitbreaker.New("cart-store", &http.Client{Timeout: timeout}),
	}
}

// Get returns the owner's cart, or nil when it is empty.
func (c *CartClient) Get(ctx context.Context, ownerID string) (*cartdomain.Cart, error) {
	var cart cartdomain.Cart
	url := fmt.Sprintf("%s/carts/%s", c.BaseURL, ownerID)
	if err := doJSON(ctx, c.Client, http.MethodGet, url, nil, &cart); err != nil {
		return nil, err
	}
	if cart.OwnerID == "" {
		return nil, nil
	}
	return &cart, nil
}

type OrderClient struct {
	BaseURL string
	Client  circuitbreaker.Doer
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		BaseURL: baseURL,
		Client:  circuitbreaker.New("order-store", &http.Client{Timeout: timeout}),
	}
}

type CreateOrderRequest struct {
	UserID              string                  `json:"userId"`
	RestaurantID        string                  `json:"restaurantId"`
	RestaurantName      string                  `json:"restaurantName"`
	DeliveryAddress     orderdomain.Address     `json:"deliveryAddress"`
	Items               []orderdomain.OrderLine `json:"items"`
	Subtotal            float64                 `json:"subtotal"`
	DeliveryFee         float64                 `json:"deliveryFee"`
	Tax                 float64                 `json:"tax"`
	Total               float64                 `json:"total"`
	SpecialInstructions string                  `json:"specialInstructions,omitempty"`
}

func (c *OrderClient) Create(ctx context.Context, req CreateOrderRequest) (*orderdomain.Order, error) {
	var order orderdomain.Order
	url := fmt.Sprintf("%s/orders", c.BaseURL)
	if err := doJSON(ctx, c.Client, http.MethodPost, url, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *OrderClient) Get(ctx context.Context, orderID string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	url := fmt.Sprintf("%s/orders/%s", c.BaseURL, orderID)
	if err := doJSON(ctx, c.Client, http.MethodGet, url, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type PaymentClient struct {
	BaseURL string
	Client  circuitbreaker.Doer
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		BaseURL: baseURL,
		Client:  circuitbreaker.New("payment-store", &http.Client{Timeout: timeout}),
	}
}

type InitiatePaymentRequest struct {
	OrderID       string                 `json:"orderId"`
	UserID        string                 `json:"userId"`
	Amount        float64                `json:"amount"`
	PaymentMethod string                 `json:"paymentMethod"`
	CardDetails   *paydomain.CardSummary `json:"cardDetails,omitempty"`
}

func (c *PaymentClient) Initiate(ctx context.Context, req InitiatePaymentRequest) (*paysvc.InitiateResult, error) {
	var result paysvc.InitiateResult
	url := fmt.Sprintf("%s/payments/initiate", c.BaseURL)
	if err := doJSON(ctx, c.Client, http.MethodPost, url, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *PaymentClient) Process(ctx context.Context, paymentID, transactionRef string, outcome paydomain.Outcome) (*paydomain.Payment, error) {
	var payment paydomain.Payment
	url := fmt.Sprintf("%s/payments/process", c.BaseURL)
	body := map[string]string{
		"paymentId":     paymentID,
		"transactionId": transactionRef,
		"status":        string(outcome),
	}
	if err := doJSON(ctx, c.Client, http.MethodPost, url, body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *PaymentClient) GetByOrderID(ctx context.Context, orderID string) (*paydomain.Payment, error) {
	var payment paydomain.Payment
	url := fmt.Sprintf("%s/payments/order/%s", c.BaseURL, orderID)
	if err := doJSON(ctx, c.Client, http.MethodGet, url, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
