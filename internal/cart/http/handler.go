package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2005arun/Food-ordering/internal/cart/domain"
	"github.com/2005arun/Food-ordering/internal/cart/service"
	"github.com/2005arun/Food-ordering/pkg/api"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	carts   *service.CartService
	timeout time.Duration
}

func NewHandler(carts *service.CartService, timeout time.Duration) *Handler {
	return &Handler{
		carts:   carts,
		timeout: timeout,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{ownerId}", h.GetCart)
	r.Post("/{ownerId}/add", h.AddLine)
	r.Put("/{ownerId}/items/{itemId}", h.UpdateLine)
	r.Delete("/{ownerId}/items/{itemId}", h.RemoveLine)
	r.Delete("/{ownerId}", h.ClearCart)
	return r
}

type AddLineRequestDTO struct {
	RestaurantID        string  `json:"restaurantId"`
	RestaurantName      string  `json:"restaurantName"`
	MenuItemID          string  `json:"menuItemId"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	Image               string  `json:"image"`
	SpecialInstructions string  `json:"specialInstructions"`
}

type UpdateLineRequestDTO struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")

	cart, err := h.carts.Get(ctx, ownerID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "could not load cart")
		return
	}
	if cart == nil {
		api.OK(w, nil, "Cart is empty")
		return
	}

	api.OK(w, cart, "")
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.RestaurantID) == "" {
		api.Error(w, http.StatusBadRequest, "restaurantId is required")
		return
	}
	if strings.TrimSpace(req.MenuItemID) == "" {
		api.Error(w, http.StatusBadRequest, "menuItemId is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		api.Error(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.Quantity < 1 {
		api.Error(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	line := domain.CartLine{
		ItemID:              req.MenuItemID,
		Name:                strings.TrimSpace(req.Name),
		UnitPrice:           req.Price,
		Quantity:            req.Quantity,
		ImageRef:            req.Image,
		SpecialInstructions: req.SpecialInstructions,
	}

	cart, err := h.carts.AddLine(ctx, ownerID, req.RestaurantID, req.RestaurantName, line)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "could not add item to cart")
		return
	}

	api.Created(w, cart, "Item added to cart")
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")
	itemID := chi.URLParam(r, "itemId")

	var req UpdateLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		api.Error(w, http.StatusBadRequest, "quantity must be 0 or greater")
		return
	}

	cart, err := h.carts.UpdateLine(ctx, ownerID, itemID, *req.Quantity)
	h.respondMutation(w, cart, err)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")
	itemID := chi.URLParam(r, "itemId")

	cart, err := h.carts.RemoveLine(ctx, ownerID, itemID)
	h.respondMutation(w, cart, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ownerID := chi.URLParam(r, "ownerId")

	if err := h.carts.Clear(ctx, ownerID); err != nil {
		api.Error(w, http.StatusInternalServerError, "could not clear cart")
		return
	}

	api.OK(w, nil, "Cart cleared")
}

// respondMutation maps update/remove outcomes to the envelope. An unknown
// owner or item is a no-op success, not a hard error, so the client flow
// stays simple.
func (h *Handler) respondMutation(w http.ResponseWriter, cart *domain.Cart, err error) {
	switch {
	case errors.Is(err, service.ErrCartNotFound), errors.Is(err, service.ErrItemNotFound):
		api.OK(w, nil, "Nothing to change")
	case err != nil:
		api.Error(w, http.StatusInternalServerError, "could not update cart")
	case cart == nil:
		api.OK(w, nil, "Cart cleared")
	default:
		api.OK(w, cart, "Cart updated")
	}
}
