package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Manager runs scheduled tasks in-process on cron expressions.
type Manager struct {
	cron   *cron.Cron
	logger *slog.Logger
	tasks  map[string]*task
	names  []string

	mu      sync.Mutex
	started bool

	ctxMu  sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

type task struct {
	handler  scheduledHandler
	schedule string
	id       cron.EntryID
}

// NewManager creates a job manager with the given options.
// Every schedule is parsed up front; an invalid expression fails construction
// with ErrInvalidSchedule. Call Start() to begin firing tasks.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := &config{location: time.Local}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cl := cronLogger{logger: cfg.logger}
	m := &Manager{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(cfg.location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: cfg.logger,
		tasks:  make(map[string]*task, len(cfg.schedules)),
		ctx:    context.Background(),
	}

	for _, sched := range cfg.schedules {
		if _, ok := m.tasks[sched.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, sched.name)
		}

		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, err
		}

		id := m.cron.Schedule(schedule, &scheduledJob{
			manager: m,
			handler: sched.handler,
			name:    sched.name,
		})

		m.tasks[sched.name] = &task{handler: sched.handler, schedule: sched.schedule, id: id}
		m.names = append(m.names, sched.name)
	}

	return m, nil
}

// Start begins firing scheduled tasks.
// Task contexts inherit values from ctx but not its cancellation;
// they are cancelled by Stop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.ctxMu.Lock()
	m.ctx, m.cancel = runCtx, cancel
	m.ctxMu.Unlock()

	m.cron.Start()

	m.started = true
	m.logger.InfoContext(ctx, "job manager started",
		slog.Int("tasks", len(m.names)),
	)

	return nil
}

// Stop halts the scheduler, cancels running tasks, and waits for them to
// return or for ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}

	m.ctxMu.RLock()
	cancel := m.cancel
	m.ctxMu.RUnlock()
	if cancel != nil {
		cancel()
	}

	done := m.cron.Stop()
	m.started = false

	select {
	case <-done.Done():
	case <-ctx.Done():
		return fmt.Errorf("job: stop: %w", ctx.Err())
	}

	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// Run executes a registered task immediately, outside its schedule.
func (m *Manager) Run(ctx context.Context, name string) error {
	t, ok := m.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.execute(ctx, name, t.handler)
}

// Entries lists registered tasks in registration order.
func (m *Manager) Entries() []Entry {
	entries := make([]Entry, 0, len(m.names))
	for _, name := range m.names {
		t := m.tasks[name]
		e := m.cron.Entry(t.id)
		entries = append(entries, Entry{
			Name:     name,
			Schedule: t.schedule,
			Next:     e.Next,
			Prev:     e.Prev,
		})
	}
	return entries
}

// Started reports whether the scheduler is running.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *Manager) runContext() context.Context {
	m.ctxMu.RLock()
	defer m.ctxMu.RUnlock()
	return m.ctx
}

func (m *Manager) execute(ctx context.Context, name string, handler scheduledHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	m.logger.DebugContext(ctx, "executing task", slog.String("task", name))

	err := handler(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.ErrorContext(ctx, "task failed",
			slog.String("task", name),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}

	m.logger.DebugContext(ctx, "task completed",
		slog.String("task", name),
		slog.Duration("duration", time.Since(start)),
	)
	return err
}

// Shutdown returns a shutdown function for the job manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Stop(ctx)
	}
}

// StartFunc returns a startup function for the job manager.
func (m *Manager) StartFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Start(ctx)
	}
}
