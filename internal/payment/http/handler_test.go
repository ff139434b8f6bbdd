package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
	"github.com/2005arun/Food-ordering/internal/payment/repository"
	"github.com/2005arun/Food-ordering/internal/payment/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepository struct {
	m        sync.Mutex
	payments map[string]*domain.Payment
	byOrder  map[string]string
}

func newMemRepository() *memRepository {
	return &memRepository{
		payments: map[string]*domain.Payment{},
		byOrder:  map[string]string{},
	}
}

func (r *memRepository) Create(_ context.Context, payment *domain.Payment) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, exists := r.byOrder[payment.OrderID]; exists {
		return repository.ErrDuplicatePayment
	}
	r.payments[payment.ID] = payment
	r.byOrder[payment.OrderID] = payment.ID
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.m.Lock()
	defer r.m.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return payment, nil
}

func (r *memRepository) GetByOrderID(_ context.Context, orderID string) (*domain.Payment, error) {
	r.m.Lock()
	defer r.m.Unlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return r.payments[id], nil
}

func (r *memRepository) UpdateStatus(_ context.Context, id string, update repository.StatusUpdate) (*domain.Payment, error) {
	r.m.Lock()
	defer r.m.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	payment.Status = update.Status
	if update.TransactionRef != "" {
		payment.TransactionRef = update.TransactionRef
	}
	if update.TransactionTime != nil {
		payment.TransactionTime = update.TransactionTime
	}
	return payment, nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyPaymentStatus(context.Context, string, domain.Outcome, string) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.NewPaymentService(newMemRepository(), noopNotifier{}, time.Second)
	srv := httptest.NewServer(NewHandler(svc, 5*time.Second).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func initiateBody() map[string]any {
	return map[string]any{
		"orderId":       "order1",
		"userId":        "user1",
		"amount":        315.0,
		"paymentMethod": "CREDIT_CARD",
		"cardDetails":   map[string]any{"last4": "4242", "brand": "VISA"},
	}
}

func initiatePayment(t *testing.T, srv *httptest.Server) (paymentID, transactionRef string) {
	t.Helper()
	resp, body := doRequest(t, http.MethodPost, srv.URL+"/initiate", initiateBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	return data["paymentId"].(string), data["transactionId"].(string)
}

func TestInitiate_Created(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/initiate", initiateBody())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["paymentId"])
	assert.NotEmpty(t, data["transactionId"])
	assert.NotEmpty(t, data["paymentUrl"])
	assert.Equal(t, 315.0, data["amount"])
}

func TestInitiate_DuplicateOrderConflicts(t *testing.T) {
	srv := newTestServer(t)
	initiatePayment(t, srv)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/initiate", initiateBody())

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Payment already initiated for this order", body["message"])
}

func TestInitiate_UnknownMethod(t *testing.T) {
	srv := newTestServer(t)

	body := initiateBody()
	body["paymentMethod"] = "BARTER"

	resp, decoded := doRequest(t, http.MethodPost, srv.URL+"/initiate", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, decoded["success"])
}

func TestProcess_Completed(t *testing.T) {
	srv := newTestServer(t)
	paymentID, ref := initiatePayment(t, srv)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/process",
		map[string]any{"paymentId": paymentID, "transactionId": ref, "status": "COMPLETED"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, ref, data["transactionId"])
}

func TestProcess_Failed(t *testing.T) {
	srv := newTestServer(t)
	paymentID, ref := initiatePayment(t, srv)

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/process",
		map[string]any{"paymentId": paymentID, "transactionId": ref, "status": "FAILED"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "FAILED", data["status"])
}

func TestProcess_MissingPaymentID(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/process",
		map[string]any{"transactionId": "TXN_1_A", "status": "COMPLETED"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcess_InvalidStatus(t *testing.T) {
	srv := newTestServer(t)
	paymentID, ref := initiatePayment(t, srv)

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/process",
		map[string]any{"paymentId": paymentID, "transactionId": ref, "status": "PROCESSING"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetByID_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/nope", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Payment not found", body["message"])
}

func TestGetByOrder(t *testing.T) {
	srv := newTestServer(t)
	paymentID, _ := initiatePayment(t, srv)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/order/order1", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, paymentID, data["id"])
	assert.Equal(t, "order1", data["orderId"])
}

func TestRefund(t *testing.T) {
	srv := newTestServer(t)
	paymentID, ref := initiatePayment(t, srv)
	doRequest(t, http.MethodPost, srv.URL+"/process",
		map[string]any{"paymentId": paymentID, "transactionId": ref, "status": "COMPLETED"})

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/"+paymentID+"/refund", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "REFUNDED", data["status"])
}
