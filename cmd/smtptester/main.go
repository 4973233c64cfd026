// Command smtptester serves the SMTP testing API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dmitrymomot/smtptester"
	"github.com/dmitrymomot/smtptester/handlers"
	"github.com/dmitrymomot/smtptester/middlewares"
	"github.com/dmitrymomot/smtptester/pkg/batch"
	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
	"github.com/dmitrymomot/smtptester/pkg/job"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/logger"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
	"github.com/dmitrymomot/smtptester/pkg/mailer/smtp"
	"github.com/dmitrymomot/smtptester/pkg/probe"
	"github.com/dmitrymomot/smtptester/pkg/redis"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "smtptester:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor(), logger.BatchIDExtractor())

	store, closeStore, storeCheck, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	book := logbook.NewLogger(store, logbook.WithSlog(log.With(slog.String("component", "logbook"))))

	gateway := smtp.NewFromConfig(cfg.SMTP, smtp.WithLogger(log.With(slog.String("component", "smtp"))))
	m := mailer.New(gateway, mailer.NewRenderer(templates(cfg.Mailer)), cfg.Mailer)

	controller := batch.New(m,
		batch.WithLogbook(book),
		batch.WithLogger(log),
		batch.WithPausePollInterval(cfg.Batch.PausePoll),
		batch.WithDelayTick(cfg.Batch.DelayTick),
	)

	jobs, err := newJobs(cfg.Probe, m, book, log)
	if err != nil {
		return err
	}

	app := smtptester.New(
		smtptester.WithCustomLogger(log.With(slog.String("component", "http"))),
		smtptester.WithMaxBodyBytes(cfg.HTTP.MaxUploadBytes),
		smtptester.WithMiddleware(
			middlewares.RequestID(),
			middlewares.RequestLogger(),
			middlewares.Recover(),
			middlewares.CORS(cfg.CORS),
			middlewares.Timeout(cfg.HTTP.RequestTimeout),
		),
		smtptester.WithErrorHandler(handlers.ErrorHandler),
		smtptester.WithNotFoundHandler(handlers.NotFound),
		smtptester.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		smtptester.WithHealthChecks(
			smtptester.WithReadinessCheck("logbook", storeCheck),
			smtptester.WithReadinessCheck("jobs", job.Healthcheck(jobs)),
		),
		smtptester.WithHandlers(
			handlers.NewConnection(m, book,
				handlers.WithResolver(dnscheck.NewFromConfig(cfg.DNS)),
				handlers.WithPreflight(cfg.HTTP.Preflight),
			),
			handlers.NewEmail(m, book),
			handlers.NewBatch(controller, book),
			handlers.NewLogs(book),
		),
	)

	return app.Run(cfg.HTTP.Addr,
		smtptester.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		smtptester.StartupHook(jobs.StartFunc()),
		smtptester.ShutdownHook(controller.Shutdown),
		smtptester.ShutdownHook(jobs.Shutdown()),
		smtptester.ShutdownHook(closeStore),
		smtptester.ShutdownHook(logger.FlushSentry()),
	)
}

// openStore picks the Redis log store when REDIS_URL is set, memory otherwise.
// The close hook and readiness check are nil for the memory store.
func openStore(ctx context.Context, cfg Config, log *slog.Logger) (logbook.Store, func(context.Context) error, func(context.Context) error, error) {
	if !cfg.Redis.Enabled() {
		log.InfoContext(ctx, "using in-memory activity log", slog.Int("max_entries", cfg.Log.Max))
		return logbook.NewMemory(cfg.Log.Max), nil, nil, nil
	}

	client, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis: %w", err)
	}
	log.InfoContext(ctx, "using redis activity log", slog.String("key", cfg.Redis.LogKey))
	return logbook.NewRedis(client, cfg.Redis.LogKey, cfg.Log.Max), redis.Shutdown(client), redis.Healthcheck(client), nil
}

func templates(cfg mailer.Config) fs.FS {
	if cfg.TemplateDir != "" {
		return os.DirFS(cfg.TemplateDir)
	}
	return mailer.DefaultFS()
}

func newJobs(cfg probe.Config, verifier mailer.Verifier, book *logbook.Logger, log *slog.Logger) (*job.Manager, error) {
	opts := []job.Option{job.WithLogger(log.With(slog.String("component", "jobs")))}

	task, err := probe.New(cfg, verifier, book)
	switch {
	case errors.Is(err, probe.ErrDisabled):
	case err != nil:
		return nil, fmt.Errorf("probe: %w", err)
	default:
		opts = append(opts, job.WithScheduledTask(task))
	}

	return job.NewManager(opts...)
}
