package logbook

import (
	"context"
	"time"
)

// Kind classifies an entry.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Entry is one line of the activity log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Details   any       `json:"details,omitempty"`
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
}

// Store is an append-only activity log read newest-first.
type Store interface {
	// Append records e. Entries are never modified afterwards.
	Append(ctx context.Context, e Entry) error

	// List returns up to limit entries, newest first. A limit <= 0 returns all.
	// The returned slice belongs to the caller.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
