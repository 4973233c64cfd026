package dnscheck_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
)

type countingLookup struct {
	calls int
	err   error
}

func (l *countingLookup) Check(_ context.Context, host string) (*dnscheck.Report, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &dnscheck.Report{Host: host, Addresses: []string{"192.0.2.10"}}, nil
}

func TestCached(t *testing.T) {
	t.Parallel()

	t.Run("serves repeated lookups from cache", func(t *testing.T) {
		t.Parallel()
		next := &countingLookup{}
		c := dnscheck.NewCached(next, time.Minute, 16)

		first, err := c.Check(context.Background(), "Mail.Example.test.")
		require.NoError(t, err)
		second, err := c.Check(context.Background(), "mail.example.test")
		require.NoError(t, err)

		assert.Equal(t, 1, next.calls)
		assert.Same(t, first, second)
	})

	t.Run("failures are retried", func(t *testing.T) {
		t.Parallel()
		next := &countingLookup{err: dnscheck.ErrNotFound}
		c := dnscheck.NewCached(next, time.Minute, 16)

		for range 2 {
			_, err := c.Check(context.Background(), "missing.example.test")
			require.ErrorIs(t, err, dnscheck.ErrNotFound)
		}
		assert.Equal(t, 2, next.calls)
	})

	t.Run("against a live resolver", func(t *testing.T) {
		t.Parallel()
		addr := startDNS(t)
		lookup := dnscheck.NewFromConfig(dnscheck.Config{
			Nameservers: []string{addr},
			Timeout:     time.Second,
			CacheTTL:    time.Minute,
			CacheSize:   4,
		})
		require.IsType(t, &dnscheck.Cached{}, lookup)

		r, err := lookup.Check(context.Background(), "mail.example.test")
		require.NoError(t, err)
		assert.Equal(t, []string{"192.0.2.10", "2001:db8::10"}, r.Addresses)
	})
}
