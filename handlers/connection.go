package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
	"github.com/dmitrymomot/smtptester/pkg/logbook"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// Resolver looks up an SMTP host before connecting.
type Resolver interface {
	Check(ctx context.Context, host string) (*dnscheck.Report, error)
}

// Connection serves the connection test and DNS preflight endpoints.
type Connection struct {
	verifier  mailer.Verifier
	book      *logbook.Logger
	resolver  Resolver
	preflight bool
}

// ConnectionOption configures a Connection handler.
type ConnectionOption func(*Connection)

// WithResolver enables POST /api/preflight.
func WithResolver(r Resolver) ConnectionOption {
	return func(h *Connection) {
		h.resolver = r
	}
}

// WithPreflight runs a DNS lookup before every connection test. A failed
// lookup is logged and the test proceeds anyway.
func WithPreflight(enabled bool) ConnectionOption {
	return func(h *Connection) {
		h.preflight = enabled
	}
}

// NewConnection creates the connection handler.
func NewConnection(verifier mailer.Verifier, book *logbook.Logger, opts ...ConnectionOption) *Connection {
	h := &Connection{verifier: verifier, book: book}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Connection) Routes(r internal.Router) {
	r.POST("/api/test-connection", h.test)
	if h.resolver != nil {
		r.POST("/api/preflight", h.lookup)
	}
}

func (h *Connection) test(c internal.Context) error {
	var form connectionForm
	if err := bind(c, &form, func() error {
		if _, err := c.MultipartForm(); err != nil {
			return err
		}
		form.fromMultipart(c)
		return nil
	}); err != nil {
		if isMissingFields(err) {
			h.book.Error(c, "Missing required fields (Host, Port).", nil)
		}
		return err
	}

	params, err := form.params()
	if err != nil {
		return err
	}

	h.book.Info(c, fmt.Sprintf("Testing connection to %s...", params))

	if h.preflight && h.resolver != nil {
		h.runPreflight(c, params.Host)
	}

	start := time.Now()
	if err := h.verifier.Verify(c, params); err != nil {
		return failure(c, h.book, err, "Connection failed: "+err.Error())
	}

	h.book.Success(c, "Connection successful!", map[string]any{
		"host":       params.Host,
		"port":       params.Port,
		"mode":       params.Mode,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Connection successful",
	})
}

func (h *Connection) runPreflight(ctx context.Context, host string) {
	report, err := h.resolver.Check(ctx, host)
	if err != nil {
		h.book.Error(ctx, fmt.Sprintf("DNS preflight for %s failed: %v", host, err), nil)
		return
	}
	h.book.Info(ctx, preflightSummary(report))
}

type preflightRequest struct {
	Host string `json:"host" validate:"required"`
}

func (h *Connection) lookup(c internal.Context) error {
	var req preflightRequest
	verrs, err := c.BindJSON(&req)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return internal.ErrBadRequest(errMissingFields, internal.WithFields(verrs.Fields()...))
	}

	report, err := h.resolver.Check(c, strings.TrimSpace(req.Host))
	switch {
	case errors.Is(err, dnscheck.ErrInvalidHost):
		return internal.ErrBadRequest("Invalid host name", internal.WithFields("host"), internal.WithError(err))
	case errors.Is(err, dnscheck.ErrNotFound):
		h.book.Error(c, fmt.Sprintf("DNS preflight for %s failed: no records found", req.Host), nil)
		return internal.ErrNotFound("No DNS records found for "+req.Host, internal.WithError(err))
	case err != nil:
		h.book.Error(c, fmt.Sprintf("DNS preflight for %s failed: %v", req.Host, err), nil)
		return internal.NewHTTPError(http.StatusBadGateway, "DNS lookup failed",
			internal.WithError(err), internal.WithDetails(map[string]string{"error": err.Error()}))
	}

	h.book.Info(c, preflightSummary(report))
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"report":  report,
	})
}

func preflightSummary(r *dnscheck.Report) string {
	if r.IPLiteral {
		return fmt.Sprintf("DNS preflight: %s is an IP address", r.Host)
	}
	msg := fmt.Sprintf("DNS preflight: %s resolves to %s", r.Host, strings.Join(r.Addresses, ", "))
	if len(r.MX) > 0 {
		hosts := make([]string, len(r.MX))
		for i, mx := range r.MX {
			hosts[i] = mx.Host
		}
		msg += fmt.Sprintf(" (MX: %s)", strings.Join(hosts, ", "))
	}
	return msg
}

// failure records a failed SMTP operation and builds the 500 response.
// Transport failures are logged as network errors, distinct from answers the
// server gave.
func failure(ctx context.Context, book *logbook.Logger, err error, gatewayMsg string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	details := mailer.Details(err)
	if mailer.IsNetworkError(err) {
		book.Error(ctx, "Network error: "+err.Error(), details)
	} else {
		book.Error(ctx, gatewayMsg, details)
	}
	return internal.ErrInternal(err.Error(), internal.WithError(err), internal.WithDetails(details))
}

func isMissingFields(err error) bool {
	httpErr := internal.AsHTTPError(err)
	return httpErr != nil && httpErr.Message == errMissingFields
}
