package prices

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider serves canned data and counts upstream calls.
type countingProvider struct {
	calls int64
	err   error
	delay time.Duration
}

func (p *countingProvider) TopCoins(ctx context.Context, currency string, limit int) ([]Coin, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	coins := make([]Coin, limit)
	for i := range coins {
		coins[i] = Coin{Symbol: "BTC", Name: currency}
	}
	return coins, nil
}

func (p *countingProvider) callCount() int64 {
	return atomic.LoadInt64(&p.calls)
}

func newTestCache(provider Provider, ttl time.Duration) (*Cache, *time.Time) {
	c := NewCache(provider, ttl)
	now := time.Now()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheServesFreshEntries(t *testing.T) {
	provider := &countingProvider{}
	c, _ := newTestCache(provider, 5*time.Minute)

	first, err := c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, second, 10)

	assert.Equal(t, int64(1), provider.callCount())
}

func TestCacheRefetchesAfterTTL(t *testing.T) {
	provider := &countingProvider{}
	c, now := newTestCache(provider, 5*time.Minute)

	_, err := c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)

	// Just inside the TTL: still cached.
	*now = now.Add(5*time.Minute - time.Second)
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), provider.callCount())

	// At the TTL boundary the entry is expired.
	*now = now.Add(time.Second)
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), provider.callCount())
}

func TestCacheKeysByCurrencyAndLimit(t *testing.T) {
	provider := &countingProvider{}
	c, _ := newTestCache(provider, 5*time.Minute)

	_, err := c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)
	_, err = c.Top(context.Background(), Query{Currency: "eur", Limit: 10})
	require.NoError(t, err)
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(3), provider.callCount())
}

func TestCacheCoalescesConcurrentMisses(t *testing.T) {
	provider := &countingProvider{delay: 50 * time.Millisecond}
	c, _ := newTestCache(provider, 5*time.Minute)

	const goroutines = 20
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), provider.callCount())
}

func TestCachePropagatesUpstreamError(t *testing.T) {
	provider := &countingProvider{err: apperr.Upstream("price provider")}
	c, now := newTestCache(provider, 5*time.Minute)

	_, err := c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstream, apperr.From(err).Code)

	// Errors are not cached; the next call tries again.
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.Error(t, err)
	assert.Equal(t, int64(2), provider.callCount())

	// An expired entry is never served in place of a failed refresh.
	provider.err = nil
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.NoError(t, err)

	*now = now.Add(10 * time.Minute)
	provider.err = apperr.Upstream("price provider")
	_, err = c.Top(context.Background(), Query{Currency: "usd", Limit: 10})
	require.Error(t, err)
}

func TestQueryNormalize(t *testing.T) {
	q, err := Query{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "usd", q.Currency)
	assert.Equal(t, DefaultLimit, q.Limit)

	q, err = Query{Currency: " EUR ", Limit: 25}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "eur", q.Currency)
	assert.Equal(t, 25, q.Limit)

	_, err = Query{Currency: "us d"}.Normalize()
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)

	_, err = Query{Limit: MaxLimit + 1}.Normalize()
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)
}
