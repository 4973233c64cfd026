package logger

import (
	"context"
	"log/slog"
)

// Error returns an "error" attribute. A nil error yields an empty attribute that slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

type batchIDKey struct{}

// WithBatchID stores a batch identifier in ctx for BatchIDExtractor.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, id)
}

// BatchID returns the batch identifier stored in ctx, if any.
func BatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchIDKey{}).(string)
	return id
}

// BatchIDExtractor adds "batch_id" to records logged with a batch context.
func BatchIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := BatchID(ctx); id != "" {
			return slog.String("batch_id", id), true
		}
		return slog.Attr{}, false
	}
}
