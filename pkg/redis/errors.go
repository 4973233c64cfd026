package redis

import "errors"

var (
	// ErrNoURL is returned by Open when REDIS_URL is empty.
	ErrNoURL = errors.New("redis: no connection URL")
	// ErrInvalidURL covers unsupported schemes and unparsable URLs.
	ErrInvalidURL = errors.New("redis: invalid connection URL")
	// ErrConnectionFailed wraps the last ping error after all attempts.
	ErrConnectionFailed = errors.New("redis: failed to establish connection")
	// ErrUnhealthy is returned by the readiness check.
	ErrUnhealthy = errors.New("redis: server not responding")
)
