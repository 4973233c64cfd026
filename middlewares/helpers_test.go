package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/smtptester/internal"
)

func newTestContext(w http.ResponseWriter, r *http.Request) internal.Context {
	return internal.NewContext(w, r, nil, 0)
}

func newLoggedContext(w http.ResponseWriter, r *http.Request) (internal.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return internal.NewContext(w, r, log, 0), buf
}

func get(path string) (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil)
}
