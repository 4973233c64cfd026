// Package cache provides a small in-memory TTL cache with least-recently-used
// eviction. Load deduplicates concurrent misses for the same key, so an
// expensive lookup runs once no matter how many callers ask for it.
//
//	reports := cache.New[*dnscheck.Report](5*time.Minute, cache.WithMaxEntries(256))
//	r, err := reports.Load(ctx, host, func(ctx context.Context) (*dnscheck.Report, error) {
//	    return checker.Check(ctx, host)
//	})
//
// Failed loads are never cached.
package cache
