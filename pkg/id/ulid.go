// Package id provides sortable ID generation utilities.
package id

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidID is returned when a string is not a valid ULID.
var ErrInvalidID = errors.New("id: invalid ulid")

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Returns a 26-character Crockford Base32 string. IDs generated within the same
// millisecond are monotonically increasing, so they sort by creation order.
func NewULID() string {
	return ulid.Make().String()
}

// Time extracts the millisecond timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidID, err)
	}
	return ulid.Time(u.Time()), nil
}
