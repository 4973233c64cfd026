package job

import "context"

// Healthcheck reports ErrNotStarted until the scheduler is running, so a
// readiness probe fails while scheduled probes would not fire.
func Healthcheck(m *Manager) func(context.Context) error {
	return func(context.Context) error {
		if m == nil || !m.Started() {
			return ErrNotStarted
		}
		return nil
	}
}
