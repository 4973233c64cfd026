package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	now        func() time.Time
	maxEntries int
}

// WithMaxEntries bounds the cache size. The least recently used entry is
// evicted when the bound is reached. Zero means unlimited.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type entry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

// Cache holds values for a fixed time-to-live.
type Cache[V any] struct {
	flight singleflight.Group
	opts   options

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List // front is most recently used
	ttl   time.Duration
}

// New creates a cache whose entries live for ttl. A ttl <= 0 disables
// caching: Set is a no-op and Load always calls through.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		opts:  o,
		items: make(map[string]*list.Element),
		lru:   list.New(),
		ttl:   ttl,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	e := elem.Value.(*entry[V])
	if !c.opts.now().Before(e.expiresAt) {
		c.remove(elem)
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.opts.now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value, e.expiresAt = value, expiresAt
		c.lru.MoveToFront(elem)
		return
	}

	if c.opts.maxEntries > 0 && len(c.items) >= c.opts.maxEntries {
		c.remove(c.lru.Back())
	}
	c.items[key] = c.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
}

// Delete drops key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Len counts stored entries, expired ones included until they are touched.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Load returns the cached value for key or computes it with fn.
// Concurrent callers missing the same key share a single fn call, which runs
// with the first caller's ctx.
func (c *Cache[V]) Load(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, val)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// remove unlinks elem. Caller must hold mu.
func (c *Cache[V]) remove(elem *list.Element) {
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}
