package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/handlers"
	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Verify(ctx context.Context, params mailer.ConnectionParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockGateway) Send(ctx context.Context, params mailer.ConnectionParams, msg *mailer.Message) (*mailer.Result, error) {
	args := m.Called(ctx, params, msg)
	return args.Get(0).(*mailer.Result), args.Error(1)
}

type stubResolver struct {
	report *dnscheck.Report
	err    error
	hosts  []string
}

func (r *stubResolver) Check(_ context.Context, host string) (*dnscheck.Report, error) {
	r.hosts = append(r.hosts, host)
	return r.report, r.err
}

func newBook() *logbook.Logger {
	return logbook.NewLogger(logbook.NewMemory(0))
}

func newApp(h ...internal.Handler) *internal.App {
	return internal.New(
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHandlers(h...),
	)
}

func do(t *testing.T, app http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func jsonRequest(t *testing.T, method, path string, v any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if v != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	name, contentType string
	content           []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="attachments"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func messages(t *testing.T, book *logbook.Logger) []string {
	t.Helper()
	entries, err := book.List(context.Background(), 0)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func settings() map[string]any {
	return map[string]any{
		"smtpHost":       "smtp.test",
		"smtpPort":       "587",
		"connectionMode": "auth",
		"username":       "tester",
		"password":       "secret",
	}
}

var testParams = mailer.ConnectionParams{
	Host:     "smtp.test",
	Port:     587,
	Mode:     mailer.ModeAuth,
	Username: "tester",
	Password: "secret",
}
