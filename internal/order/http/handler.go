package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	"github.com/2005arun/Food-ordering/internal/order/repository"
	"github.com/2005arun/Food-ordering/internal/order/service"
	"github.com/2005arun/Food-ordering/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	orders  *service.OrderService
	timeout time.Duration
}

func NewHandler(orders *service.OrderService, timeout time.Duration) *Handler {
	return &Handler{
		orders:  orders,
		timeout: timeout,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateOrder)
	r.Get("/user/{ownerId}", h.ListOrders)
	r.Get("/{orderId}", h.GetOrder)
	r.Put("/{orderId}/status", h.UpdateStatus)
	r.Put("/{orderId}/payment", h.UpdatePaymentStatus)
	r.Put("/{orderId}/cancel", h.CancelOrder)
	return r
}

type CreateOrderRequestDTO struct {
	UserID              string             `json:"userId"`
	RestaurantID        string             `json:"restaurantId"`
	RestaurantName      string             `json:"restaurantName"`
	DeliveryAddress     domain.Address     `json:"deliveryAddress"`
	Items               []domain.OrderLine `json:"items"`
	Subtotal            float64            `json:"subtotal"`
	DeliveryFee         float64            `json:"deliveryFee"`
	Tax                 float64            `json:"tax"`
	Total               float64            `json:"total"`
	SpecialInstructions string             `json:"specialInstructions"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type UpdatePaymentRequestDTO struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentID     string `json:"paymentId"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.Create(ctx, service.CreateOrderInput{
		OwnerID:             req.UserID,
		RestaurantID:        req.RestaurantID,
		RestaurantName:      req.RestaurantName,
		DeliveryAddress:     req.DeliveryAddress,
		Lines:               req.Items,
		Subtotal:            req.Subtotal,
		DeliveryFee:         req.DeliveryFee,
		Tax:                 req.Tax,
		Total:               req.Total,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "could not place order")
		return
	}

	api.Created(w, order, "Order placed successfully")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetByID(ctx, id)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	api.OK(w, order, "")
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")

	page, ok := parsePositiveQueryInt(w, r, "page", 1)
	if !ok {
		return
	}
	limit, ok := parsePositiveQueryInt(w, r, "limit", 10)
	if !ok {
		return
	}

	result, err := h.orders.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "could not list orders")
		return
	}

	orders := result.Orders
	if orders == nil {
		orders = []*domain.Order{}
	}

	api.Page(w, orders, api.Pagination{
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
		Pages: result.Pages,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.SetStatus(ctx, id, domain.OrderStatus(req.Status))
	if err != nil {
		respondOrderError(w, err)
		return
	}

	api.OK(w, order, "Order status updated")
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.SetPaymentStatus(ctx, id, domain.PaymentStatus(req.PaymentStatus), req.PaymentID)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	api.OK(w, order, "Payment status updated")
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Cancel(ctx, id)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	api.OK(w, order, "Order cancelled")
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func parsePositiveQueryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		api.Error(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		api.Error(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrValidation):
		api.Error(w, http.StatusBadRequest, err.Error())
	default:
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
