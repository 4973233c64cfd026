package health

import "errors"

var (
	// ErrCheckFailed is returned by Err when at least one check is unhealthy.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish before the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// Err reports ErrCheckFailed for an unhealthy response.
func (r *Response) Err() error {
	if r == nil || r.Status == StatusHealthy {
		return nil
	}
	return ErrCheckFailed
}
