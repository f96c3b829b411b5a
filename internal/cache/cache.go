package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by a Backend when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// Clock supplies the current time; tests inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Entry is a cached payload and the time it was stored.
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

// Backend stores entries without interpreting freshness.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, error)
	Store(ctx context.Context, key string, e Entry) error
}

// Cache layers a TTL over a Backend. Expired entries are still returned,
// flagged as stale, so callers can fall back to them when the provider fails.
type Cache struct {
	backend Backend
	ttl     time.Duration
	clock   Clock
}

// New creates a Cache. A nil clock uses the system clock.
func New(backend Backend, ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{backend: backend, ttl: ttl, clock: clock}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key and whether it is still fresh.
// It returns ErrMiss when nothing is stored.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	e, err := c.backend.Load(ctx, key)
	if err != nil {
		return Entry{}, false, err
	}
	fresh := c.clock.Now().Sub(e.StoredAt) <= c.ttl
	return e, fresh, nil
}

// Set stores data under key, stamped with the current time.
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.backend.Store(ctx, key, Entry{Data: data, StoredAt: c.clock.Now()}); err != nil {
		return fmt.Errorf("cache store %s: %w", key, err)
	}
	return nil
}
