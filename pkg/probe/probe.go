// Package probe verifies a configured SMTP target on a cron schedule and
// records each outcome in the activity log.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// TaskName is the name the probe registers under in the job manager.
const TaskName = "smtp_probe"

// ErrDisabled is returned by New when no schedule or host is configured.
var ErrDisabled = errors.New("probe: not configured")

// Config describes the probe target.
type Config struct {
	Schedule string `env:"PROBE_SCHEDULE"`
	Host     string `env:"PROBE_HOST"`
	Mode     string `env:"PROBE_MODE" envDefault:"auth"`
	Username string `env:"PROBE_USERNAME"`
	Password string `env:"PROBE_PASSWORD"`
	Port     int    `env:"PROBE_PORT" envDefault:"587"`
}

// Enabled reports whether both a schedule and a host are set.
func (c Config) Enabled() bool {
	return c.Schedule != "" && c.Host != ""
}

// Task is a scheduled connection check.
type Task struct {
	verifier mailer.Verifier
	book     *logbook.Logger
	params   mailer.ConnectionParams
	schedule string
}

// New builds a probe task. It returns ErrDisabled when cfg is not enabled.
func New(cfg Config, verifier mailer.Verifier, book *logbook.Logger) (*Task, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	mode, err := mailer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	params := mailer.ConnectionParams{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Mode:     mode,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Task{
		verifier: verifier,
		book:     book,
		params:   params,
		schedule: cfg.Schedule,
	}, nil
}

func (t *Task) Name() string     { return TaskName }
func (t *Task) Schedule() string { return t.schedule }

// Handle verifies the target once. The outcome is logged either way; a
// failure is also returned so the job manager reports it.
func (t *Task) Handle(ctx context.Context) error {
	start := time.Now()
	err := t.verifier.Verify(ctx, t.params)
	ms := time.Since(start).Milliseconds()

	if err == nil {
		t.book.Success(ctx,
			fmt.Sprintf("[probe] Connection to %s successful (%dms)", t.params, ms),
			map[string]any{"host": t.params.Host, "port": t.params.Port, "mode": t.params.Mode})
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	t.book.Error(ctx,
		fmt.Sprintf("[probe] Connection to %s failed: %s (%dms)", t.params, err.Error(), ms),
		mailer.Details(err))
	return err
}
