package logbook

import "errors"

var (
	// ErrMarshal is returned when an entry cannot be serialized.
	ErrMarshal = errors.New("logbook: failed to marshal entry")

	// ErrUnmarshal is returned when a stored entry cannot be decoded.
	ErrUnmarshal = errors.New("logbook: failed to unmarshal entry")

	// ErrNoID is returned when appending an entry without an ID.
	ErrNoID = errors.New("logbook: entry id is required")
)
