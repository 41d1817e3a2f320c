package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Simplici0/movequote/internal/calculator"
)

// MemoryStore keeps encoded sessions in process memory. Entries expire after
// the configured TTL and are purged every ten minutes.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (calculator.State, error) {
	x, found := s.cache.Get(id)
	if !found {
		return calculator.State{}, ErrNotFound
	}
	return decode(x.([]byte))
}

func (s *MemoryStore) Save(_ context.Context, id string, state calculator.State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	s.cache.Set(id, data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// expiringStore is implemented by stores whose sessions expire at a known
// instant, so cached copies can expire with them.
type expiringStore interface {
	getExpiring(ctx context.Context, id string) (calculator.State, time.Time, error)
	expiryAfterSave() time.Time
}

type cachedEntry struct {
	data    []byte
	expires time.Time
}

// Cached is a read-through cache in front of another Store. Writes go to the
// backing store first and then refresh the cache. An entry never outlives
// the session it copies.
type Cached struct {
	next  Store
	cache *cache.Cache
	now   func() time.Time
}

func NewCached(next Store, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.New(ttl, 10*time.Minute), now: time.Now}
}

func (c *Cached) Get(ctx context.Context, id string) (calculator.State, error) {
	if x, found := c.cache.Get(id); found {
		entry := x.(cachedEntry)
		if entry.expires.IsZero() || c.now().Before(entry.expires) {
			return decode(entry.data)
		}
		c.cache.Delete(id)
	}

	var (
		state   calculator.State
		expires time.Time
		err     error
	)
	if es, ok := c.next.(expiringStore); ok {
		state, expires, err = es.getExpiring(ctx, id)
	} else {
		state, err = c.next.Get(ctx, id)
	}
	if err != nil {
		return calculator.State{}, err
	}
	_ = c.put(id, state, expires)
	return state, nil
}

func (c *Cached) Save(ctx context.Context, id string, state calculator.State) error {
	if err := c.next.Save(ctx, id, state); err != nil {
		c.cache.Delete(id)
		return err
	}
	var expires time.Time
	if es, ok := c.next.(expiringStore); ok {
		expires = es.expiryAfterSave()
	}
	return c.put(id, state, expires)
}

func (c *Cached) Delete(ctx context.Context, id string) error {
	c.cache.Delete(id)
	return c.next.Delete(ctx, id)
}

func (c *Cached) put(id string, state calculator.State, expires time.Time) error {
	data, err := encode(state)
	if err != nil {
		c.cache.Delete(id)
		return err
	}
	c.cache.Set(id, cachedEntry{data: data, expires: expires}, cache.DefaultExpiration)
	return nil
}
