package dnscheck

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/smtptester/pkg/cache"
)

// Lookup resolves a host into a Report. *Checker implements it.
type Lookup interface {
	Check(ctx context.Context, host string) (*Report, error)
}

// Cached memoizes successful lookups per host. Failures always go through
// to the next lookup.
type Cached struct {
	next    Lookup
	reports *cache.Cache[*Report]
}

// NewCached wraps next with a TTL cache holding at most size reports.
func NewCached(next Lookup, ttl time.Duration, size int) *Cached {
	return &Cached{
		next:    next,
		reports: cache.New[*Report](ttl, cache.WithMaxEntries(size)),
	}
}

// NewFromConfig returns a Checker, wrapped in a cache when cfg.CacheTTL is set.
func NewFromConfig(cfg Config) Lookup {
	c := New(cfg)
	if cfg.CacheTTL <= 0 {
		return c
	}
	return NewCached(c, cfg.CacheTTL, cfg.CacheSize)
}

func (c *Cached) Check(ctx context.Context, host string) (*Report, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	return c.reports.Load(ctx, key, func(ctx context.Context) (*Report, error) {
		return c.next.Check(ctx, host)
	})
}
