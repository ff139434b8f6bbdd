package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/2005arun/Food-ordering/internal/cart/cache"
	"github.com/2005arun/Food-ordering/internal/cart/domain"
	"github.com/2005arun/Food-ordering/internal/cart/repository"
	"github.com/2005arun/Food-ordering/internal/pricing"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	pricing pricing.Config
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, pricing pricing.Config) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		pricing: pricing,
	}
}

// Get returns the owner's cart, or nil when the owner has none. An absent
// cart is not an error: the caller renders it as an empty cart.
func (s *CartService) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.Get(ctx, ownerID)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				return (*domain.Cart)(nil), nil
			}
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), ownerID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine puts a line into the owner's cart, creating the cart on first add.
// A line for a different restaurant than the cart's current one discards all
// existing lines and scopes the cart to the new restaurant. A line whose
// item is already present merges by summing quantities.
func (s *CartService) AddLine(ctx context.Context, ownerID, restaurantID, restaurantName string, line domain.CartLine) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if cart == nil {
		cart = &domain.Cart{
			OwnerID:        ownerID,
			RestaurantID:   restaurantID,
			RestaurantName: restaurantName,
		}
	} else if cart.RestaurantID != restaurantID {
		// Switching restaurants empties the cart. Deliberate policy: a cart
		// holds lines from a single restaurant only.
		cart.Lines = nil
		cart.RestaurantID = restaurantID
		cart.RestaurantName = restaurantName
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ItemID == line.ItemID {
			cart.Lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, line)
	}

	s.applyTotals(cart)
	if err := s.repo.Upsert(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.invalidateCache(ownerID)
	return cart, nil
}

// UpdateLine sets a line's quantity; zero removes the line. When the last
// line goes, the cart record is deleted rather than kept as an empty shell
// and nil is returned.
func (s *CartService) UpdateLine(ctx context.Context, ownerID, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	idx := -1
	for i := range cart.Lines {
		if cart.Lines[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	if quantity == 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		cart.Lines[idx].Quantity = quantity
	}

	return s.saveOrDelete(ctx, cart)
}

// RemoveLine drops a line from the cart, with the same empty-cart deletion
// rule as UpdateLine.
func (s *CartService) RemoveLine(ctx context.Context, ownerID, itemID string) (*domain.Cart, error) {
	return s.UpdateLine(ctx, ownerID, itemID, 0)
}

// Clear deletes the owner's cart unconditionally. A missing cart is not an
// error.
func (s *CartService) Clear(ctx context.Context, ownerID string) error {
	err := s.repo.Delete(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.invalidateCache(ownerID)
	return nil
}

func (s *CartService) saveOrDelete(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if len(cart.Lines) == 0 {
		if err := s.repo.Delete(ctx, cart.OwnerID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return nil, fmt.Errorf("delete empty cart: %w", err)
		}
		s.invalidateCache(cart.OwnerID)
		return nil, nil
	}

	s.applyTotals(cart)
	if err := s.repo.Upsert(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.invalidateCache(cart.OwnerID)
	return cart, nil
}

// applyTotals recomputes the cart totals from its lines. Every mutation goes
// through here so persisted totals never go stale.
func (s *CartService) applyTotals(cart *domain.Cart) {
	lines := make([]pricing.Line, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	totals := s.pricing.Calculate(lines)

	cart.Subtotal = totals.Subtotal
	cart.DeliveryFee = totals.DeliveryFee
	cart.Tax = totals.Tax
	cart.Total = totals.Total
}

func (s *CartService) invalidateCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, ownerID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
