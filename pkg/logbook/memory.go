package logbook

import (
	"context"
	"sync"
)

// Memory keeps entries in process memory. The backing slice is replaced on
// every write, so a snapshot taken by a reader never changes underneath it.
type Memory struct {
	entries []Entry // oldest first
	max     int
	mu      sync.RWMutex
}

// NewMemory creates an in-memory store holding at most max entries.
// A max <= 0 means unbounded. When full, the oldest entry is dropped.
func NewMemory(max int) *Memory {
	return &Memory{max: max}
}

func (m *Memory) Append(_ context.Context, e Entry) error {
	if e.ID == "" {
		return ErrNoID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keep := m.entries
	if m.max > 0 && len(keep) >= m.max {
		keep = keep[len(keep)-m.max+1:]
	}
	next := make([]Entry, len(keep), len(keep)+1)
	copy(next, keep)
	m.entries = append(next, e)
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	snapshot := m.entries
	m.mu.RUnlock()

	n := len(snapshot)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(snapshot) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, snapshot[i])
	}
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Store = (*Memory)(nil)

