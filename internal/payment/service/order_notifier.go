package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
	"github.com/2005arun/Food-ordering/pkg/circuitbreaker"
)

// OrderNotifier tells the order store about a settled payment.
type OrderNotifier interface {
	NotifyPaymentStatus(ctx context.Context, orderID string, outcome domain.Outcome, paymentID string) error
}

// HTTPOrderNotifier calls the order store's payment endpoint. Calls are
// bounded by the client timeout; the payment service never blocks on a slow
// order store.
type HTTPOrderNotifier struct {
	baseURL string
	client  circuitbreaker.Doer
}

func NewHTTPOrderNotifier(baseURL string, timeout time.Duration) *HTTPOrderNotifier {
	return &HTTPOrderNotifier{
		baseURL: baseURL,
		client:  circuitbreaker.New("order-store", &http.Client{Timeout: timeout}),
	}
}

func (n *HTTPOrderNotifier) NotifyPaymentStatus(ctx context.Context, orderID string, outcome domain.Outcome, paymentID string) error {
	body, err := json.Marshal(map[string]string{
		"paymentStatus": string(outcome),
		"paymentId":     paymentID,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/orders/%s/payment", n.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify order store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("order store answered %d", resp.StatusCode)
	}
	return nil
}
