// Package logger builds the process-wide slog.Logger.
//
// Output goes to stdout as JSON (or text with LOG_FORMAT=text). When SENTRY_DSN is
// set, records are also forwarded to Sentry: errors create issues, and records at
// SENTRY_MIN_LEVEL or above are stored as Sentry logs. Initialization failures
// fall back to stdout only.
//
// Context extractors add request-scoped attributes on every call:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor(), logger.BatchIDExtractor())
//	log.InfoContext(logger.WithBatchID(ctx, id), "batch started")
//	// {"level":"INFO","msg":"batch started","batch_id":"01J..."}
package logger
