package middlewares_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/middlewares"
	"github.com/dmitrymomot/smtptester/pkg/id"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a ULID when none is present", func(t *testing.T) {
		t.Parallel()
		rec, req := get("/")
		c := newTestContext(rec, req)

		var seen string
		err := middlewares.RequestID()(func(c internal.Context) error {
			seen = middlewares.GetRequestID(c)
			return nil
		})(c)
		require.NoError(t, err)

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(middlewares.RequestIDHeader))
		_, err = id.Time(seen)
		assert.NoError(t, err)
	})

	t.Run("reuses upstream header", func(t *testing.T) {
		t.Parallel()
		rec, req := get("/")
		req.Header.Set("X-Correlation-ID", "corr-1")
		c := newTestContext(rec, req)

		require.NoError(t, middlewares.RequestID()(func(internal.Context) error { return nil })(c))
		assert.Equal(t, "corr-1", rec.Header().Get(middlewares.RequestIDHeader))
	})

	t.Run("header priority", func(t *testing.T) {
		t.Parallel()
		rec, req := get("/")
		req.Header.Set("X-Trace", "trace-1")
		req.Header.Set("X-Request-ID", "req-1")
		c := newTestContext(rec, req)

		mw := middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Trace", "X-Request-ID"))
		require.NoError(t, mw(func(internal.Context) error { return nil })(c))
		assert.Equal(t, "trace-1", middlewares.GetRequestID(c))
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()
		rec, req := get("/")
		c := newTestContext(rec, req)

		mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "fixed" }))
		require.NoError(t, mw(func(internal.Context) error { return nil })(c))
		assert.Equal(t, "fixed", rec.Header().Get(middlewares.RequestIDHeader))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	rec, req := get("/")
	c := newTestContext(rec, req)
	require.NoError(t, middlewares.RequestID()(func(internal.Context) error { return nil })(c))

	attr, ok := extract(c.Context())
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, middlewares.GetRequestID(c), attr.Value.String())
}
