package internal

import (
	"fmt"
	"strconv"
)

// ContextValue returns the value stored under key with c.Set, or the zero
// value of T when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// QueryInt parses an integer query parameter. An absent or empty parameter
// yields def.
func QueryInt(c Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", name, err)
	}
	return n, nil
}
