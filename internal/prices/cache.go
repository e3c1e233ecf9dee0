// Package prices serves cryptocurrency market data through a read-through
// TTL cache. Concurrent misses for the same query are coalesced into a
// single upstream call; upstream failures surface to the caller even when
// an expired entry is still held.
package prices

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultLimit is used when a request does not specify a coin count.
	DefaultLimit = 10
	// MaxLimit caps a single request.
	MaxLimit = 250
)

// Query identifies one cacheable price lookup.
type Query struct {
	Currency string
	Limit    int
}

// Normalize lowercases the currency and clamps the limit, applying defaults.
func (q Query) Normalize() (Query, error) {
	q.Currency = strings.ToLower(strings.TrimSpace(q.Currency))
	if q.Currency == "" {
		q.Currency = "usd"
	}
	for _, r := range q.Currency {
		if r < 'a' || r > 'z' {
			return Query{}, apperr.Validation("invalid currency code")
		}
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		return Query{}, apperr.Validation(fmt.Sprintf("limit must be at most %d", MaxLimit))
	}
	return q, nil
}

func (q Query) key() string {
	return fmt.Sprintf("%s:%d", q.Currency, q.Limit)
}

type entry struct {
	coins     []Coin
	fetchedAt time.Time
}

// Cache is a read-through cache in front of a Provider. Entries are keyed
// per query and served until the TTL elapses; expired entries are refetched,
// never served stale.
type Cache struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache wraps provider with a TTL cache.
func NewCache(provider Provider, ttl time.Duration) *Cache {
	return &Cache{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
}

// Top returns the top coins for the query, from cache when fresh.
func (c *Cache) Top(ctx context.Context, q Query) ([]Coin, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	key := q.key()

	if coins, ok := c.fresh(key); ok {
		metrics.RecordCacheHit("prices")
		return coins, nil
	}
	metrics.RecordCacheMiss("prices")

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have refilled the entry while this
		// goroutine waited on the flight group.
		if coins, ok := c.fresh(key); ok {
			return coins, nil
		}

		coins, err := c.provider.TopCoins(ctx, q.Currency, q.Limit)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{coins: coins, fetchedAt: c.now()}
		c.mu.Unlock()
		return coins, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Coin), nil
}

func (c *Cache) fresh(key string) ([]Coin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.coins, true
}
