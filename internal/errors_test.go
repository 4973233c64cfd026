package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("handler failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("double-wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusConflict, "conflict")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("something went wrong")
		require.False(t, internal.IsHTTPError(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusNotFound, "not found")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("535 5.7.8 authentication failed")
		httpErr := internal.ErrInternal("Invalid login",
			internal.WithErrorCode("SMTP_AUTH"),
			internal.WithDetails(map[string]int{"code": 535}),
			internal.WithError(cause),
		)
		err := fmt.Errorf("handler: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusInternalServerError, got.Code)
		require.Equal(t, "Invalid login", got.Message)
		require.Equal(t, "SMTP_AUTH", got.ErrorCode)
		require.Equal(t, map[string]int{"code": 535}, got.Details)
		require.ErrorIs(t, err, cause)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.Nil(t, internal.AsHTTPError(err))
	})

	t.Run("nil returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}

func TestConvenienceConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *internal.HTTPError
		code int
	}{
		{internal.ErrBadRequest("bad"), http.StatusBadRequest},
		{internal.ErrNotFound("missing"), http.StatusNotFound},
		{internal.ErrConflict("busy"), http.StatusConflict},
		{internal.ErrRequestTooLarge("big"), http.StatusRequestEntityTooLarge},
		{internal.ErrUnprocessable("nope"), http.StatusUnprocessableEntity},
		{internal.ErrInternal("boom"), http.StatusInternalServerError},
		{internal.ErrServiceUnavailable("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		require.Equal(t, tt.code, tt.err.StatusCode())
		require.Equal(t, http.StatusText(tt.code), tt.err.StatusText())
	}

	withFields := internal.ErrBadRequest("Missing required fields", internal.WithFields("host", "port"))
	require.Equal(t, []string{"host", "port"}, withFields.Fields)
	require.Equal(t, "Missing required fields", withFields.Error())
}
