// Package cache provides a TTL cache with in-flight request de-duplication.
//
// Each resource kind gets its own Cache. A read returns a live entry without
// I/O, joins a fetch already in flight for the same key, or starts a new one.
// Writes elsewhere in the program clear entries by key or key prefix so the
// next read refetches.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// FetchFunc loads the value for one key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// ticket is one in-flight fetch. done is closed after value and err are set.
type ticket[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Cache is a keyed TTL cache. The zero value is not usable; use New.
type Cache[T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics

	mu      sync.Mutex
	entries map[string]entry[T]
	tickets map[string]*ticket[T]
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records hits, fetches, shared waits and invalidations.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a cache whose entries live for ttl.
func New[T any](name string, ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Cache[T]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		logger:  o.logger.With("cache", name),
		metrics: o.metrics,
		entries: make(map[string]entry[T]),
		tickets: make(map[string]*ticket[T]),
	}
}

// GetOption configures one Get call.
type GetOption func(*getOptions)

type getOptions struct {
	force bool
}

// WithForce skips the live entry and any in-flight fetch and always fetches.
func WithForce(force bool) GetOption {
	return func(o *getOptions) { o.force = force }
}

// Get returns the value for key, calling fetch at most once per key at a time.
//
// fetch runs detached from ctx: if ctx ends first, Get returns ctx.Err() while
// the fetch completes for other waiters and for the cache. A failed fetch is
// never stored.
func (c *Cache[T]) Get(ctx context.Context, key string, fetch FetchFunc[T], opts ...GetOption) (T, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	if !o.force {
		if e, ok := c.entries[key]; ok {
			if c.now().Before(e.expiresAt) {
				c.mu.Unlock()
				c.metrics.hit(c.name)
				return e.value, nil
			}
			delete(c.entries, key)
		}
		if t, ok := c.tickets[key]; ok {
			c.mu.Unlock()
			c.metrics.shared(c.name)
			return wait(ctx, t)
		}
	}
	// Register before any I/O so concurrent readers find the ticket.
	t := &ticket[T]{done: make(chan struct{})}
	c.tickets[key] = t
	c.mu.Unlock()

	c.metrics.miss(c.name)
	go c.run(context.WithoutCancel(ctx), key, t, fetch)
	return wait(ctx, t)
}

func (c *Cache[T]) run(ctx context.Context, key string, t *ticket[T], fetch FetchFunc[T]) {
	start := c.now()
	value, err := call(ctx, fetch)

	c.mu.Lock()
	// An invalidation or a forced fetch may have dropped this ticket; its
	// result still reaches the waiters but is not stored.
	if c.tickets[key] == t {
		delete(c.tickets, key)
		if err == nil {
			c.entries[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
		}
	}
	c.mu.Unlock()

	t.value, t.err = value, err
	close(t.done)

	if err != nil {
		c.logger.Debug("Cache fetch failed", "key", key, "error", err)
		return
	}
	c.logger.Debug("Cache fetch completed", "key", key, "duration_ms", c.now().Sub(start).Milliseconds())
}

func call[T any](ctx context.Context, fetch FetchFunc[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, fmt.Errorf("cache fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func wait[T any](ctx context.Context, t *ticket[T]) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Set stores value under key, replacing any entry and dropping any
// in-flight fetch for the key.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tickets, key)
	c.entries[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops entries and in-flight tickets. With no scopes it drops
// everything; otherwise it drops each key equal to a scope or starting with
// scope followed by ":".
func (c *Cache[T]) Invalidate(scopes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(scopes) == 0 {
		clear(c.entries)
		clear(c.tickets)
		c.metrics.invalidate(c.name)
		return
	}

	for key := range c.entries {
		if inScope(key, scopes) {
			delete(c.entries, key)
		}
	}
	for key := range c.tickets {
		if inScope(key, scopes) {
			delete(c.tickets, key)
		}
	}
	c.metrics.invalidate(c.name)
}

// Len returns the number of stored entries, live or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func inScope(key string, scopes []string) bool {
	for _, scope := range scopes {
		if key == scope || strings.HasPrefix(key, scope+Separator) {
			return true
		}
	}
	return false
}

// Separator joins key parts.
const Separator = ":"

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key builds a cache key from parts. Parts are escaped so that distinct
// part lists never produce the same key, and Key(a) is a scope covering
// every Key(a, ...).
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = keyEscaper.Replace(p)
	}
	return strings.Join(escaped, Separator)
}
