package logger

import "log/slog"

// NewNope returns a logger that drops every record. Components default to it
// until a real logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
