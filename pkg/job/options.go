package job

import (
	"context"
	"log/slog"
	"time"
)

// config holds job manager configuration.
type config struct {
	logger    *slog.Logger
	location  *time.Location
	schedules []scheduleConfig
}

// Option configures the job manager.
type Option func(*config)

// WithScheduledTask registers a periodic task using structural typing.
// The task must implement Name(), Schedule(), and Handle(ctx) methods.
// Schedule() should return a cron expression (5 fields: min hour day month weekday).
//
// Example:
//
//	type Probe struct {
//	    verifier mailer.Verifier
//	}
//
//	func (t *Probe) Name() string     { return "smtp_probe" }
//	func (t *Probe) Schedule() string { return "*/5 * * * *" }
//	func (t *Probe) Handle(ctx context.Context) error {
//	    return t.verifier.Verify(ctx, t.params)
//	}
//
//	job.WithScheduledTask(probe.New(cfg, verifier, book))
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithLogger sets the logger for job processing.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocation sets the time zone schedules are evaluated in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}
