// Package cache provides a single-slot time-to-live cache.
package cache

import (
	"sync"
	"time"

	"solana-risk-engine/internal/observability"
)

// Clock returns the current time.
type Clock func() time.Time

// TTL holds one value together with the time it was last refreshed.
//
// Concurrent refills are not coalesced: two callers that both miss may both
// fetch and Set, and the last writer wins.
type TTL[T any] struct {
	name string
	ttl  time.Duration
	now  Clock

	mu          sync.Mutex
	data        T
	refreshedAt time.Time
	set         bool
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.now = c
	}
}

// NewTTL creates an empty cache. name labels the hit and miss metrics.
func NewTTL[T any](name string, ttl time.Duration, opts ...Option) *TTL[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[T]{name: name, ttl: ttl, now: o.now}
}

// Name returns the cache label.
func (c *TTL[T]) Name() string {
	return c.name
}

// Get returns the cached value if it was stored less than ttl ago.
func (c *TTL[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set && c.now().Sub(c.refreshedAt) < c.ttl {
		observability.RecordCache(c.name, true)
		return c.data, true
	}
	observability.RecordCache(c.name, false)
	var zero T
	return zero, false
}

// Set stores v with the current time.
func (c *TTL[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = v
	c.refreshedAt = c.now()
	c.set = true
}

// Peek returns the last stored value regardless of age.
func (c *TTL[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data, c.set
}

// Age returns how long ago the value was stored. ok is false if nothing was stored.
func (c *TTL[T]) Age() (age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return 0, false
	}
	return c.now().Sub(c.refreshedAt), true
}
