package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2005arun/Food-ordering/internal/payment/domain"
	"github.com/2005arun/Food-ordering/internal/payment/repository"
	"github.com/2005arun/Food-ordering/internal/payment/service"
	"github.com/2005arun/Food-ordering/pkg/api"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	payments *service.PaymentService
	timeout  time.Duration
}

func NewHandler(payments *service.PaymentService, timeout time.Duration) *Handler {
	return &Handler{
		payments: payments,
		timeout:  timeout,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/initiate", h.Initiate)
	r.Post("/process", h.Process)
	r.Get("/order/{orderId}", h.GetByOrder)
	r.Get("/{paymentId}", h.GetByID)
	r.Post("/{paymentId}/refund", h.Refund)
	return r
}

type InitiateRequestDTO struct {
	OrderID       string              `json:"orderId"`
	UserID        string              `json:"userId"`
	Amount        float64             `json:"amount"`
	PaymentMethod string              `json:"paymentMethod"`
	CardDetails   *domain.CardSummary `json:"cardDetails"`
}

type ProcessRequestDTO struct {
	PaymentID     string `json:"paymentId"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req InitiateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.payments.Initiate(ctx, service.InitiateInput{
		OrderID: req.OrderID,
		OwnerID: req.UserID,
		Amount:  req.Amount,
		Method:  domain.Method(req.PaymentMethod),
		Card:    req.CardDetails,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			api.Error(w, http.StatusConflict, "Payment already initiated for this order")
			return
		}
		respondPaymentError(w, err)
		return
	}

	api.Created(w, result, "Payment initiated successfully")
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payment, err := h.payments.GetByID(ctx, chi.URLParam(r, "paymentId"))
	if err != nil {
		respondPaymentError(w, err)
		return
	}

	api.OK(w, payment, "")
}

func (h *Handler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payment, err := h.payments.GetByOrderID(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		respondPaymentError(w, err)
		return
	}

	api.OK(w, payment, "")
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProcessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PaymentID == "" {
		api.Error(w, http.StatusBadRequest, "paymentId is required")
		return
	}

	payment, err := h.payments.Process(ctx, req.PaymentID, req.TransactionID, domain.Outcome(req.Status))
	if err != nil {
		respondPaymentError(w, err)
		return
	}

	api.OK(w, payment, "Payment processed successfully")
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payment, err := h.payments.Refund(ctx, chi.URLParam(r, "paymentId"))
	if err != nil {
		respondPaymentError(w, err)
		return
	}

	api.OK(w, payment, "Refund processed successfully")
}

func respondPaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrPaymentNotFound):
		api.Error(w, http.StatusNotFound, "Payment not found")
	case errors.Is(err, service.ErrValidation):
		api.Error(w, http.StatusBadRequest, err.Error())
	default:
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
