package logbook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "smtptester:logbook"

// Redis stores entries as JSON in a Redis list, newest at the head.
// Several tester instances can share one log through it.
type Redis struct {
	client redis.UniversalClient
	key    string
	max    int64
}

// NewRedis creates a Redis-backed store. A max <= 0 means unbounded.
// The client should be obtained from pkg/redis.Open.
func NewRedis(client redis.UniversalClient, key string, max int) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key, max: int64(max)}
}

func (r *Redis) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return ErrNoID
	}

	data, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, r.key, data)
		if r.max > 0 {
			p.LTrim(ctx, r.key, 0, r.max-1)
		}
		return nil
	})
	return err
}

func (r *Redis) List(ctx context.Context, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(raw))
	for _, s := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, errors.Join(ErrUnmarshal, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

var _ Store = (*Redis)(nil)
