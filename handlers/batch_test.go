package handlers_test

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/handlers"
	"github.com/dmitrymomot/smtptester/pkg/batch"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// gatedSender blocks every delivery until release is closed.
type gatedSender struct {
	release  chan struct{}
	started  chan struct{}
	once     sync.Once
	mu       sync.Mutex
	subjects []string
}

func newGatedSender() *gatedSender {
	return &gatedSender{release: make(chan struct{}), started: make(chan struct{})}
}

func (s *gatedSender) Send(ctx context.Context, _ mailer.ConnectionParams, msg *mailer.Message) (*mailer.Result, error) {
	s.mu.Lock()
	s.subjects = append(s.subjects, msg.Content.Subject)
	s.mu.Unlock()
	s.once.Do(func() { close(s.started) })

	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &mailer.Result{MessageID: "<id@smtp.test>", Response: "250 OK"}, nil
}

func batchFields(count, delay any) map[string]any {
	f := emailFields()
	maps.Copy(f, map[string]any{"count": count, "delay": delay})
	return f
}

func newBatchApp(t *testing.T, sender mailer.Sender) (*batch.Controller, http.Handler, func() []string) {
	t.Helper()
	book := newBook()
	controller := batch.New(sender,
		batch.WithLogbook(book),
		batch.WithPausePollInterval(5*time.Millisecond),
		batch.WithDelayTick(time.Millisecond),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = controller.Shutdown(ctx)
	})
	return controller, newApp(handlers.NewBatch(controller, book)), func() []string { return messages(t, book) }
}

func TestBatch_RunsToCompletion(t *testing.T) {
	t.Parallel()

	gw := newGatedSender()
	close(gw.release)
	controller, app, logs := newBatchApp(t, gw)

	rec, body := do(t, app, jsonRequest(t, http.MethodPost, "/api/batch", batchFields(3, "0")))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Wait(ctx))

	rec, body = do(t, app, jsonRequest(t, http.MethodGet, "/api/batch", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	status := body["batch"].(map[string]any)
	assert.Equal(t, "idle", status["state"])
	assert.Equal(t, map[string]any{"sent": float64(3), "total": float64(3)}, status["progress"])

	assert.Equal(t, []string{"Smoke test (1/3)", "Smoke test (2/3)", "Smoke test (3/3)"}, gw.subjects)
	assert.Equal(t, "Sending process completed.", logs()[0])
}

func TestBatch_Controls(t *testing.T) {
	t.Parallel()

	gw := newGatedSender()
	controller, app, logs := newBatchApp(t, gw)

	rec, _ := do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/pause", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch", batchFields("5", 10)))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	<-gw.started

	rec, body := do(t, app, jsonRequest(t, http.MethodPost, "/api/batch", batchFields(1, 0)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_running", body["code"])

	rec, body = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/pause", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paused", body["batch"].(map[string]any)["state"])

	rec, _ = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/pause", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/resume", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sending", body["batch"].(map[string]any)["state"])

	rec, body = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/cancel", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["batch"].(map[string]any)["state"])

	rec, _ = do(t, app, jsonRequest(t, http.MethodPost, "/api/batch/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(gw.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Wait(ctx))

	assert.Equal(t, 1, controller.Progress().Sent)
	assert.Equal(t, "Batch sending cancelled by user.", logs()[0])
}

func TestBatch_InvalidInput(t *testing.T) {
	t.Parallel()

	_, app, logs := newBatchApp(t, newGatedSender())

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"zero count", batchFields(0, 0), "count"},
		{"negative delay", batchFields(1, -5), "delay"},
		{"count not a number", batchFields("many", 0), "count"},
	}
	for _, tt := range tests {
		rec, body := do(t, app, jsonRequest(t, http.MethodPost, "/api/batch", tt.body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
		assert.Equal(t, []any{tt.field}, body["fields"], tt.name)
	}

	rec, body := do(t, app, jsonRequest(t, http.MethodPost, "/api/batch", settings()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["error"])
	assert.Equal(t, "Missing required fields (Host, Port, From, To).", logs()[0])
}
