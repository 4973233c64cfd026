package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
)

// PanicError is a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// HTTPError hides the panic value from clients.
func (e *PanicError) HTTPError() *internal.HTTPError {
	return internal.ErrInternal("Internal server error", internal.WithError(e))
}

// TimeoutError reports a request that outlived the Timeout middleware.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// HTTPError maps the timeout to 503.
func (e *TimeoutError) HTTPError() *internal.HTTPError {
	return internal.NewHTTPError(http.StatusServiceUnavailable, "Request timed out",
		internal.WithError(e), internal.WithErrorCode("timeout"))
}

// AsPanicError extracts a *PanicError from err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts a *TimeoutError from err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
