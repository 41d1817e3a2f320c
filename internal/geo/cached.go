package geo

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Simplici0/movequote/internal/calculator"
)

// Cached memoizes successful lookups of another Provider. Failures are not
// cached so a transient outage does not stick.
type Cached struct {
	next  Provider
	cache *cache.Cache
}

func NewCached(next Provider, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.New(ttl, 2*ttl)}
}

func cacheKey(addr calculator.Address) string {
	return strings.ToLower(query(addr))
}

func (c *Cached) Normalize(ctx context.Context, addr calculator.Address) (calculator.Address, error) {
	key := "addr:" + cacheKey(addr)
	if x, ok := c.cache.Get(key); ok {
		return x.(calculator.Address), nil
	}
	out, err := c.next.Normalize(ctx, addr)
	if err != nil {
		return out, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

func (c *Cached) Mileage(ctx context.Context, from, to calculator.Address) (float64, error) {
	key := "miles:" + cacheKey(from) + "|" + cacheKey(to)
	if x, ok := c.cache.Get(key); ok {
		return x.(float64), nil
	}
	miles, err := c.next.Mileage(ctx, from, to)
	if err != nil {
		return 0, err
	}
	c.cache.SetDefault(key, miles)
	return miles, nil
}
