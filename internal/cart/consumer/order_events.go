// Package consumer empties carts in response to order-creation events.
// Order submission clears the cart regardless of later payment outcome; the
// order store guarantees delivery of the event through its outbox, so the
// cart always goes away eventually even if this service was down.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	c "github.com/2005arun/Food-ordering/internal/cart/cache"
	r "github.com/2005arun/Food-ordering/internal/cart/repository"
	"github.com/segmentio/kafka-go"
)

type OrderCreatedEvent struct {
	OrderID string `json:"order_id"`
	OwnerID string `json:"owner_id"`
}

type Consumer struct {
	repo   r.CartRepository
	cache  c.CartCache
	reader *kafka.Reader
}

func NewConsumer(repo r.CartRepository, cache c.CartCache, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "cart-service",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{repo, cache, reader}
}

func (p *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.readAndClearCart(ctx)
	}
}

func (p *Consumer) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (p *Consumer) readAndClearCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	p.clearCart(ctx, m.Value)
}

func (p *Consumer) clearCart(ctx context.Context, payload []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("error parsing order event: %v", err)
		return
	}
	if event.OwnerID == "" {
		log.Printf("order event without owner_id, skipping")
		return
	}

	errDelete := p.repo.Delete(ctx, event.OwnerID)
	if errDelete != nil && !errors.Is(errDelete, r.ErrCartNotFound) {
		log.Printf("failed to delete cart for owner %s: %v", event.OwnerID, errDelete)
		return
	}

	if errCache := p.cache.Delete(ctx, event.OwnerID); errCache != nil {
		log.Printf("failed to delete cached cart for owner %s: %v", event.OwnerID, errCache)
	}
}
