// Package circuitbreaker wraps outbound HTTP calls in a breaker so a store
// that stopped answering trips fast instead of tying callers up in timeouts.
package circuitbreaker

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client counts transport failures only; an HTTP error status is a working
// downstream and never trips the breaker.
type Client struct {
	inner   Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func New(name string, inner Doer) *Client {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{inner: inner, breaker: cb}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.inner.Do(req)
	})
}
