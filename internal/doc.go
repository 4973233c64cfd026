// Package internal holds the HTTP runtime behind the public smtptester API:
// the chi-backed App, the Router and Context abstractions handlers are
// written against, HTTPError, and the signal-aware server loop.
//
// Handlers return errors instead of writing failure responses themselves.
// An *HTTPError carries the status code, a user-facing message, and optional
// validation fields or diagnostic details; the configured ErrorHandler turns
// it into a response.
//
//	func (h *Handler) start(c Context) error {
//	    if err := h.batch.Start(c, job); err != nil {
//	        return ErrConflict("A batch is already running", WithError(err))
//	    }
//	    return c.JSON(http.StatusAccepted, h.batch.Snapshot())
//	}
//
// Server lifecycle: startup hooks run before the listener opens; on SIGINT or
// SIGTERM the server drains in-flight requests and then runs shutdown hooks
// within the shutdown timeout.
package internal
