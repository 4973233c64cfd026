package logbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/pkg/logbook"
)

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round trip newest first", func(t *testing.T) {
		t.Parallel()

		_, client := newRedisClient(t)
		store := logbook.NewRedis(client, "", 0)

		ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, store.Append(ctx, logbook.Entry{
			ID: "a", Kind: logbook.KindSuccess, Message: "first", Timestamp: ts,
			Details: map[string]any{"messageId": "<m@x>"},
		}))
		require.NoError(t, store.Append(ctx, entry(2)))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, []string{"msg 2", "first"}, messages(all))
		require.Equal(t, logbook.KindSuccess, all[1].Kind)
		require.True(t, ts.Equal(all[1].Timestamp))
		require.Equal(t, map[string]any{"messageId": "<m@x>"}, all[1].Details)
	})

	t.Run("capped list", func(t *testing.T) {
		t.Parallel()

		mr, client := newRedisClient(t)
		store := logbook.NewRedis(client, "book", 2)
		for i := 1; i <= 4; i++ {
			require.NoError(t, store.Append(ctx, entry(i)))
		}

		all, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, []string{"msg 4", "msg 3"}, messages(all))

		items, err := mr.List("book")
		require.NoError(t, err)
		require.Len(t, items, 2)

		one, err := store.List(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []string{"msg 4"}, messages(one))
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		mr, client := newRedisClient(t)
		store := logbook.NewRedis(client, "k", 0)
		require.NoError(t, store.Append(ctx, entry(1)))
		require.NoError(t, store.Clear(ctx))
		require.False(t, mr.Exists("k"))

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		t.Parallel()

		mr, client := newRedisClient(t)
		_, err := mr.Lpush("bad", "{not json")
		require.NoError(t, err)

		_, err = logbook.NewRedis(client, "bad", 0).List(ctx, 0)
		require.ErrorIs(t, err, logbook.ErrUnmarshal)
	})

	t.Run("server down", func(t *testing.T) {
		t.Parallel()

		mr, client := newRedisClient(t)
		mr.Close()
		require.Error(t, logbook.NewRedis(client, "", 0).Append(ctx, entry(1)))
	})
}
