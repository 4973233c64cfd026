package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/middlewares"
	"github.com/dmitrymomot/smtptester/pkg/logger"
)

type errorResponse struct {
	Details   any      `json:"details,omitempty"`
	Error     string   `json:"error"`
	Code      string   `json:"code,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Success   bool     `json:"success"`
}

// ErrorHandler renders handler errors as {success:false, error, fields?, details?}.
// Errors that are not *internal.HTTPError become an opaque 500.
func ErrorHandler(c internal.Context, err error) error {
	httpErr := toHTTPError(err)

	if httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed", logger.Error(err), "status", httpErr.Code)
	} else {
		c.LogDebug("request rejected", logger.Error(err), "status", httpErr.Code)
	}

	requestID := httpErr.RequestID
	if requestID == "" {
		requestID = middlewares.GetRequestID(c)
	}

	return c.JSON(httpErr.Code, errorResponse{
		Error:     httpErr.Message,
		Code:      httpErr.ErrorCode,
		Fields:    httpErr.Fields,
		Details:   httpErr.Details,
		RequestID: requestID,
	})
}

// NotFound answers unknown routes with the JSON error shape.
func NotFound(c internal.Context) error {
	return internal.ErrNotFound("Not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(c internal.Context) error {
	return internal.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
}

func toHTTPError(err error) *internal.HTTPError {
	// Middleware errors (timeouts, panics) take precedence over whatever the
	// handler returned alongside them.
	var mapped interface{ HTTPError() *internal.HTTPError }
	if errors.As(err, &mapped) {
		return mapped.HTTPError()
	}
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return httpErr
	}
	if errors.Is(err, context.Canceled) {
		return internal.NewHTTPError(499, "Request cancelled", internal.WithError(err))
	}
	return internal.ErrInternal("Internal server error", internal.WithError(err))
}
