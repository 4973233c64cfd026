package handlers

import (
	"net/http"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
)

// DefaultLogLimit caps GET /api/logs when no limit is given.
const DefaultLogLimit = 200

// Logs serves the activity log.
type Logs struct {
	book *logbook.Logger
}

// NewLogs creates the activity log handler.
func NewLogs(book *logbook.Logger) *Logs {
	return &Logs{book: book}
}

func (h *Logs) Routes(r internal.Router) {
	r.GET("/api/logs", h.list)
	r.DELETE("/api/logs", h.clear)
}

func (h *Logs) list(c internal.Context) error {
	limit, err := internal.QueryInt(c, "limit", DefaultLogLimit)
	if err != nil || limit < 0 {
		return internal.ErrBadRequest("limit must be a non-negative integer", internal.WithFields("limit"))
	}

	entries, err := h.book.List(c, limit)
	if err != nil {
		return internal.ErrServiceUnavailable("Activity log unavailable", internal.WithError(err))
	}
	if entries == nil {
		entries = []logbook.Entry{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"logs":    entries,
	})
}

func (h *Logs) clear(c internal.Context) error {
	if err := h.book.Clear(c); err != nil {
		return internal.ErrServiceUnavailable("Activity log unavailable", internal.WithError(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
