package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/smtptester/pkg/id"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/logger"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// Default pacing intervals.
const (
	DefaultPausePollInterval = 500 * time.Millisecond
	DefaultDelayTick         = 100 * time.Millisecond
)

// Controller runs at most one batch at a time.
//
// Pause and cancel are cooperative: they are observed between attempts and
// at every delay tick, never in the middle of a delivery.
type Controller struct {
	sender    mailer.Sender
	book      *logbook.Logger
	logger    *slog.Logger
	onLog     func(logbook.Entry)
	pausePoll time.Duration
	delayTick time.Duration

	state     atomic.Int32
	paused    atomic.Bool
	cancelled atomic.Bool
	sent      atomic.Int64
	total     atomic.Int64

	mu        sync.Mutex // serializes transitions and guards the fields below
	wake      chan struct{}
	done      chan struct{}
	stop      context.CancelFunc
	batchID   string
	startedAt time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLogbook sets the activity log receiving batch entries.
// Defaults to an unbounded in-memory log.
func WithLogbook(book *logbook.Logger) Option {
	return func(c *Controller) {
		if book != nil {
			c.book = book
		}
	}
}

// WithOnLog registers a callback for every entry the controller records.
func WithOnLog(fn func(logbook.Entry)) Option {
	return func(c *Controller) {
		c.onLog = fn
	}
}

// WithPausePollInterval sets how often a paused batch re-checks its signals.
func WithPausePollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pausePoll = d
		}
	}
}

// WithDelayTick sets the granularity of the inter-message delay.
func WithDelayTick(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delayTick = d
		}
	}
}

// New creates an idle Controller delivering through sender.
func New(sender mailer.Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:    sender,
		logger:    logger.NewNope(),
		pausePoll: DefaultPausePollInterval,
		delayTick: DefaultDelayTick,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.book == nil {
		c.book = logbook.NewLogger(logbook.NewMemory(0), logbook.WithSlog(c.logger))
	}
	return c
}

// Start launches job in the background and returns immediately.
// Cancelling ctx stops the batch like Cancel; callers tied to a request
// should pass context.WithoutCancel.
func (c *Controller) Start(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.done != nil || State(c.state.Load()) != Idle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	job.Message = *job.Message.Clone()

	c.batchID = id.NewULID()
	c.startedAt = time.Now()
	c.sent.Store(0)
	c.total.Store(int64(job.TotalCount))
	c.paused.Store(false)
	c.cancelled.Store(false)
	c.drainWake()
	c.state.Store(int32(Sending))

	loopCtx, stop := context.WithCancel(logger.WithBatchID(ctx, c.batchID))
	c.stop = stop
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	// Hooks run without mu held so they may call back into the controller.
	c.record(loopCtx, logbook.KindInfo, fmt.Sprintf("Starting batch: %d email(s) via %s", job.TotalCount, job.Params), nil)
	c.logger.InfoContext(loopCtx, "batch started",
		slog.String("component", "batch"),
		slog.Int("total", job.TotalCount),
		slog.Duration("delay", job.Delay),
		slog.String("smtp_addr", job.Params.Addr()),
	)

	go c.run(loopCtx, job, done)
	return nil
}

// Pause holds the batch before its next attempt.
func (c *Controller) Pause() error {
	c.mu.Lock()
	if State(c.state.Load()) != Sending {
		c.mu.Unlock()
		return ErrNotSending
	}
	c.paused.Store(true)
	c.state.Store(int32(Paused))
	c.signal()
	ctx := c.logCtx()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "batch paused",
		slog.String("component", "batch"),
		slog.Int64("sent", c.sent.Load()),
	)
	return nil
}

// Resume continues a paused batch from the next unsent index.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if State(c.state.Load()) != Paused {
		c.mu.Unlock()
		return ErrNotPaused
	}
	c.paused.Store(false)
	c.state.Store(int32(Sending))
	c.signal()
	ctx := c.logCtx()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "batch resumed",
		slog.String("component", "batch"),
		slog.Int64("sent", c.sent.Load()),
	)
	return nil
}

// Cancel stops the batch. State is Idle on return; an in-flight delivery
// completes in the background before the loop exits.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch State(c.state.Load()) {
	case Sending, Paused:
	default:
		return ErrNotActive
	}
	c.cancelled.Store(true)
	c.paused.Store(false)
	c.state.Store(int32(Idle))
	c.signal()
	return nil
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Progress returns attempts made so far and the batch size.
func (c *Controller) Progress() Progress {
	return Progress{Sent: int(c.sent.Load()), Total: int(c.total.Load())}
}

// Snapshot returns state, progress and batch identity together.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.State(),
		Progress:  c.Progress(),
		BatchID:   c.batchID,
		StartedAt: c.startedAt,
	}
}

// Logs returns up to limit activity entries, newest first.
func (c *Controller) Logs(ctx context.Context, limit int) ([]logbook.Entry, error) {
	return c.book.List(ctx, limit)
}

// Running reports whether a batch loop is still executing, including one
// that was cancelled and is draining.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// Wait blocks until the current loop exits or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops any running batch and waits for its loop to exit.
// It matches the signature expected by shutdown hooks.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	return c.Wait(ctx)
}

func (c *Controller) run(ctx context.Context, job Job, done chan struct{}) {
	defer c.finish(done)

	n := job.TotalCount
	baseSubject := job.Message.Content.Subject

	for i := range n {
		if !c.waitWhilePaused(ctx) {
			c.recordCancelled(ctx)
			return
		}

		msg := job.Message.Clone()
		if n > 1 {
			msg.Content.Subject = fmt.Sprintf("%s (%d/%d)", baseSubject, i+1, n)
		}
		c.attempt(ctx, job, msg, i, n)
		c.sent.Store(int64(i + 1))

		if i < n-1 && !c.isCancelled(ctx) {
			if !c.sleep(ctx, job.Delay) {
				c.recordCancelled(ctx)
				return
			}
		}
	}

	if c.isCancelled(ctx) {
		c.recordCancelled(ctx)
		return
	}
	c.record(ctx, logbook.KindInfo, "Sending process completed.", nil)
	c.logger.InfoContext(ctx, "batch completed", slog.String("component", "batch"), slog.Int("sent", n))
}

func (c *Controller) attempt(ctx context.Context, job Job, msg *mailer.Message, i, n int) {
	to := strings.Join(msg.Envelope.To, ", ")
	start := time.Now()
	res, err := c.deliver(ctx, job.Params, msg)
	ms := time.Since(start).Milliseconds()

	if err == nil {
		c.record(ctx, logbook.KindSuccess,
			fmt.Sprintf("[%d/%d] Successfully sent to %s (%dms)", i+1, n, to, ms), res)
		return
	}

	if ge, ok := mailer.AsGatewayError(err); ok {
		var details any = ge.Detail
		if ge.Detail == nil {
			details = map[string]string{"error": ge.Reason}
		}
		c.record(ctx, logbook.KindError,
			fmt.Sprintf("[%d/%d] Failed to send to %s: %s (%dms)", i+1, n, to, ge.Reason, ms), details)
		return
	}

	c.record(ctx, logbook.KindError, fmt.Sprintf("[%d/%d] Network error: %s", i+1, n, err.Error()), mailer.Details(err))
}

// deliver verifies the session first when the sender can, then sends.
func (c *Controller) deliver(ctx context.Context, params mailer.ConnectionParams, msg *mailer.Message) (*mailer.Result, error) {
	if v, ok := c.sender.(mailer.Verifier); ok {
		if err := v.Verify(ctx, params); err != nil {
			return nil, err
		}
	}
	return c.sender.Send(ctx, params, msg)
}

// waitWhilePaused returns false if the batch was cancelled while waiting.
func (c *Controller) waitWhilePaused(ctx context.Context) bool {
	for {
		if c.isCancelled(ctx) {
			return false
		}
		if !c.paused.Load() {
			return true
		}
		if _, ok := c.idle(ctx, c.pausePoll); !ok {
			return false
		}
	}
}

// sleep waits d of unpaused time in delayTick steps. Only time actually
// spent idle while unpaused counts toward d. Returns false on cancellation.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	// Signals raised during the last attempt are already reflected in the
	// flags checked below.
	c.drainWake()

	for remaining := d; remaining > 0; {
		if !c.waitWhilePaused(ctx) {
			return false
		}
		elapsed, ok := c.idle(ctx, min(c.delayTick, remaining))
		if !ok {
			return false
		}
		remaining -= elapsed
	}
	return !c.isCancelled(ctx)
}

// idle blocks for d or until a control signal arrives and reports how long
// it actually waited. ok is false only when ctx is done.
func (c *Controller) idle(ctx context.Context, d time.Duration) (elapsed time.Duration, ok bool) {
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-c.wake:
	case <-ctx.Done():
		return time.Since(start), false
	}
	return time.Since(start), true
}

func (c *Controller) isCancelled(ctx context.Context) bool {
	return c.cancelled.Load() || ctx.Err() != nil
}

func (c *Controller) recordCancelled(ctx context.Context) {
	c.record(ctx, logbook.KindInfo, "Batch sending cancelled by user.", nil)
	c.logger.InfoContext(ctx, "batch cancelled",
		slog.String("component", "batch"),
		slog.Int64("sent", c.sent.Load()),
	)
}

func (c *Controller) finish(done chan struct{}) {
	c.mu.Lock()
	c.state.Store(int32(Idle))
	c.paused.Store(false)
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.done = nil
	c.mu.Unlock()
	close(done)
}

func (c *Controller) record(ctx context.Context, kind logbook.Kind, msg string, details any) {
	e := c.book.Record(context.WithoutCancel(ctx), kind, msg, details)
	if c.onLog != nil {
		c.onLog(e)
	}
}

// logCtx carries the current batch id for entries recorded outside the loop.
// Caller must hold mu.
func (c *Controller) logCtx() context.Context {
	return logger.WithBatchID(context.Background(), c.batchID)
}

// signal wakes the loop without blocking. Caller must hold mu.
func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// drainWake discards a pending wake-up. The flags stay authoritative, so a
// dropped token never hides a signal.
func (c *Controller) drainWake() {
	select {
	case <-c.wake:
	default:
	}
}
