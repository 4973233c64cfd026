package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. The handler runs on the
// calling goroutine and sees the deadline through c; if it fails after the
// deadline passed without writing a response, the failure is reported as a
// *TimeoutError.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.SetContext(ctx)

			err := next(c)
			if err == nil || c.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return err
			}
			c.LogWarn("request timeout", "timeout", d.String())
			return errors.Join(&TimeoutError{Duration: d}, err)
		}
	}
}
