package rates

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mmynk/splitledger/internal/metrics"
)

// CachedProvider memoizes successful answers of another provider for a TTL.
// Failures are never cached.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

// NewCachedProvider wraps next with a cache whose entries expire after ttl.
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Rate implements Provider.
func (p *CachedProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	key := pairKey(from, to)
	if v, ok := p.cache.Get(key); ok {
		observe("cache", nil)
		return v.(float64), nil
	}
	metrics.ObserveRateLookup("cache", "miss")

	r, err := p.next.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	p.cache.SetDefault(key, r)
	return r, nil
}

// Flush drops every cached rate. Call it after recording a manual rate.
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}
