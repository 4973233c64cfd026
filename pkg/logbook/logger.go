package logbook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/smtptester/pkg/id"
	"github.com/dmitrymomot/smtptester/pkg/logger"
)

// Logger appends entries to a Store and notifies subscribers.
// Store failures are reported to slog and never returned, so recording an
// entry cannot fail the operation being recorded.
type Logger struct {
	store  Store
	slog   *slog.Logger
	hooks  []func(Entry)
	now    func() time.Time
	hookMu sync.RWMutex
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithSlog sets the logger for store failures and mirrored entries.
func WithSlog(l *slog.Logger) LoggerOption {
	return func(lg *Logger) {
		if l != nil {
			lg.slog = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) LoggerOption {
	return func(lg *Logger) {
		if now != nil {
			lg.now = now
		}
	}
}

// NewLogger creates a Logger over store.
func NewLogger(store Store, opts ...LoggerOption) *Logger {
	lg := &Logger{
		store: store,
		slog:  logger.NewNope(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// OnAppend registers fn to be called with every recorded entry.
func (l *Logger) OnAppend(fn func(Entry)) {
	if fn == nil {
		return
	}
	l.hookMu.Lock()
	l.hooks = append(l.hooks, fn)
	l.hookMu.Unlock()
}

// Record builds, stores and publishes an entry.
func (l *Logger) Record(ctx context.Context, kind Kind, msg string, details any) Entry {
	e := Entry{
		ID:        id.NewULID(),
		Kind:      kind,
		Message:   msg,
		Timestamp: l.now(),
		Details:   details,
	}

	if err := l.store.Append(ctx, e); err != nil {
		l.slog.WarnContext(ctx, "activity log append failed", logger.Error(err))
	}

	level := slog.LevelInfo
	if kind == KindError {
		level = slog.LevelWarn
	}
	l.slog.Log(ctx, level, msg, slog.String("component", "logbook"), slog.String("kind", string(kind)))

	l.hookMu.RLock()
	hooks := l.hooks
	l.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(e)
	}
	return e
}

func (l *Logger) Info(ctx context.Context, msg string) Entry {
	return l.Record(ctx, KindInfo, msg, nil)
}

func (l *Logger) Success(ctx context.Context, msg string, details any) Entry {
	return l.Record(ctx, KindSuccess, msg, details)
}

func (l *Logger) Error(ctx context.Context, msg string, details any) Entry {
	return l.Record(ctx, KindError, msg, details)
}

// List returns up to limit entries, newest first.
func (l *Logger) List(ctx context.Context, limit int) ([]Entry, error) {
	return l.store.List(ctx, limit)
}

// Clear empties the underlying store.
func (l *Logger) Clear(ctx context.Context) error {
	return l.store.Clear(ctx)
}
