package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
)

// RequestLogger writes one access log line per request. 5xx responses log at
// error level and 4xx at warn.
func RequestLogger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := http.StatusOK
			if w := c.ResponseWriter(); w != nil && w.Written() {
				status = w.Status()
			} else if err != nil {
				status = http.StatusInternalServerError
				if httpErr := internal.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				}
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			r := c.Request()
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			}
			if w := c.ResponseWriter(); w != nil {
				attrs = append(attrs, slog.Int64("bytes", w.Size()))
			}
			c.Logger().LogAttrs(c.Context(), level, "request", attrs...)

			return err
		}
	}
}
