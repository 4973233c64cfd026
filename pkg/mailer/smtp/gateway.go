// Package smtp implements mailer.Gateway on top of go-mail.
//
// Every call opens a fresh session: dial, EHLO, optional STARTTLS, optional AUTH.
// Verify stops there and sends QUIT. Send transmits one message before QUIT.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/dmitrymomot/smtptester/pkg/id"
	"github.com/dmitrymomot/smtptester/pkg/logger"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
)

// DefaultTimeout bounds dialing and every command round-trip.
const DefaultTimeout = 30 * time.Second

// Gateway delivers mail over SMTP. It holds no connection state and is safe
// for concurrent use.
type Gateway struct {
	logger        *slog.Logger
	helo          string
	mechanism     mail.SMTPAuthType
	timeout       time.Duration
	insecureAuth  bool
	tlsSkipVerify bool
}

var _ mailer.Gateway = (*Gateway)(nil)

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets the logger receiving session transcripts at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTimeout sets the dial and command timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithAuthMechanism selects the SASL mechanism: PLAIN, LOGIN or CRAM-MD5.
// Unknown values are ignored.
func WithAuthMechanism(name string) Option {
	return func(g *Gateway) {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "PLAIN":
			g.mechanism = mail.SMTPAuthPlain
		case "LOGIN":
			g.mechanism = mail.SMTPAuthLogin
		case "CRAM-MD5":
			g.mechanism = mail.SMTPAuthCramMD5
		}
	}
}

// WithInsecureAuth permits PLAIN credentials over an unencrypted channel to non-local hosts.
func WithInsecureAuth(allow bool) Option {
	return func(g *Gateway) {
		g.insecureAuth = allow
	}
}

// WithTLSSkipVerify disables certificate verification. Test servers only.
func WithTLSSkipVerify(skip bool) Option {
	return func(g *Gateway) {
		g.tlsSkipVerify = skip
	}
}

// WithHelo overrides the EHLO name. Defaults to the local hostname.
func WithHelo(name string) Option {
	return func(g *Gateway) {
		g.helo = name
	}
}

// New creates a Gateway.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		logger:    logger.NewNope(),
		mechanism: mail.SMTPAuthPlain,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromConfig creates a Gateway from env-parsed settings plus extra options.
func NewFromConfig(cfg Config, opts ...Option) *Gateway {
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithAuthMechanism(cfg.AuthMechanism),
		WithInsecureAuth(cfg.AllowInsecureAuth),
		WithTLSSkipVerify(cfg.TLSSkipVerify),
		WithHelo(cfg.Helo),
	}
	return New(append(base, opts...)...)
}

// Verify opens a session, negotiates TLS and authentication per params, and closes it.
func (g *Gateway) Verify(ctx context.Context, params mailer.ConnectionParams) error {
	ts := newTranscript(g.logger.With(slog.String("smtp_addr", params.Addr())))

	client, err := g.client(params, ts)
	if err != nil {
		return &mailer.GatewayError{Err: err, Reason: err.Error()}
	}
	if err := client.DialWithContext(ctx); err != nil {
		closeQuietly(client)
		return classify(err, ts)
	}
	if err := client.Close(); err != nil {
		g.logger.WarnContext(ctx, "smtp quit failed", slog.String("smtp_addr", params.Addr()), logger.Error(err))
	}
	return nil
}

// Send delivers msg in a new session. msg content must already be rendered.
func (g *Gateway) Send(ctx context.Context, params mailer.ConnectionParams, msg *mailer.Message) (*mailer.Result, error) {
	start := time.Now()
	ts := newTranscript(g.logger.With(slog.String("smtp_addr", params.Addr())))

	m, messageID, err := buildMessage(params, msg)
	if err != nil {
		return nil, &mailer.GatewayError{Err: err, Reason: err.Error()}
	}

	client, err := g.client(params, ts)
	if err != nil {
		return nil, &mailer.GatewayError{Err: err, Reason: err.Error()}
	}
	if err := client.DialWithContext(ctx); err != nil {
		closeQuietly(client)
		return nil, classify(err, ts)
	}
	if err := client.Send(m); err != nil {
		closeQuietly(client)
		return nil, classify(err, ts)
	}
	response := ts.lastReply()
	if err := client.Close(); err != nil {
		g.logger.WarnContext(ctx, "smtp quit failed", slog.String("smtp_addr", params.Addr()), logger.Error(err))
	}

	return &mailer.Result{
		MessageID: messageID,
		Response:  response,
		Envelope: mailer.DeliveryEnvelope{
			From: msg.Envelope.From,
			To:   msg.Envelope.Recipients(),
		},
		Duration: time.Since(start),
	}, nil
}

func (g *Gateway) client(params mailer.ConnectionParams, ts *transcript) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(params.Port),
		mail.WithTimeout(g.timeout),
		mail.WithLogger(ts),
		mail.WithDebugLog(),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         params.Host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: g.tlsSkipVerify, //nolint:gosec // opt-in for self-signed test servers
		}),
	}
	if g.helo != "" {
		opts = append(opts, mail.WithHELO(g.helo))
	}

	switch {
	case params.ImplicitTLS():
		opts = append(opts, mail.WithSSL())
	case params.Mode == mailer.ModeSTARTTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if user, pass, ok := params.Credentials(); ok {
		mech := g.mechanism
		if mech == mail.SMTPAuthPlain && g.insecureAuth {
			mech = mail.SMTPAuthPlainNoEnc
		}
		opts = append(opts,
			mail.WithSMTPAuth(mech),
			mail.WithUsername(user),
			mail.WithPassword(pass),
		)
	}

	return mail.NewClient(params.Host, opts...)
}

func buildMessage(params mailer.ConnectionParams, msg *mailer.Message) (*mail.Msg, string, error) {
	m := mail.NewMsg()
	if err := m.From(msg.Envelope.From); err != nil {
		return nil, "", fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.Envelope.To...); err != nil {
		return nil, "", fmt.Errorf("invalid recipient address: %w", err)
	}
	if len(msg.Envelope.CC) > 0 {
		if err := m.Cc(msg.Envelope.CC...); err != nil {
			return nil, "", fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(msg.Envelope.BCC) > 0 {
		if err := m.Bcc(msg.Envelope.BCC...); err != nil {
			return nil, "", fmt.Errorf("invalid bcc address: %w", err)
		}
	}

	m.Subject(msg.Content.Subject)
	m.SetDate()
	idValue := strings.ToLower(id.NewULID()) + "@" + params.Host
	m.SetMessageIDWithValue(idValue)

	switch msg.Content.EffectiveFormat() {
	case mailer.FormatHTML:
		if msg.Content.Text != "" {
			m.SetBodyString(mail.TypeTextPlain, msg.Content.Text)
			m.AddAlternativeString(mail.TypeTextHTML, msg.Content.Body)
		} else {
			m.SetBodyString(mail.TypeTextHTML, msg.Content.Body)
		}
	case mailer.FormatText:
		m.SetBodyString(mail.TypeTextPlain, msg.Content.Body)
	default:
		return nil, "", fmt.Errorf("%w: %s", mailer.ErrUnsupportedFormat, msg.Content.EffectiveFormat())
	}

	for _, a := range msg.Attachments {
		fopts := []mail.FileOption{mail.WithFileContentType(mail.ContentType(contentType(a)))}
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Content), fopts...); err != nil {
			return nil, "", fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}

	return m, "<" + idValue + ">", nil
}

// classify splits failures into transport errors and server-involved errors.
func classify(err error, ts *transcript) error {
	failed := ts.lastFailure()
	detail := &mailer.ErrorDetail{
		Cause:      err.Error(),
		Command:    failed.command,
		Transcript: ts.Lines(),
		Code:       failed.code,
	}
	if detail.Command == "" {
		detail.Command = ts.lastCommand()
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		detail.Code = protoErr.Code
		return &mailer.GatewayError{
			Err:    err,
			Reason: reasonFor(detail.Command, fmt.Sprintf("%d %s", protoErr.Code, protoErr.Msg)),
			Detail: detail,
		}
	}

	if isTLSError(err) {
		return &mailer.GatewayError{Err: err, Reason: "TLS negotiation failed: " + err.Error(), Detail: detail}
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return mailer.NetworkError(err)
	}

	reason := err.Error()
	if failed.code > 0 {
		reason = reasonFor(failed.command, failed.reply)
	}
	return &mailer.GatewayError{Err: err, Reason: reason, Detail: detail}
}

func reasonFor(command, reply string) string {
	switch command {
	case "AUTH":
		return "Invalid login: " + reply
	case "MAIL FROM":
		return "Sender rejected: " + reply
	case "RCPT TO":
		return "Recipient rejected: " + reply
	case "DATA", ".":
		return "Message rejected: " + reply
	case "STARTTLS":
		return "STARTTLS failed: " + reply
	default:
		return reply
	}
}

func isTLSError(err error) bool {
	var (
		recordErr tls.RecordHeaderError
		alertErr  tls.AlertError
		verifyErr *tls.CertificateVerificationError
	)
	return errors.As(err, &recordErr) || errors.As(err, &alertErr) || errors.As(err, &verifyErr)
}

func closeQuietly(c *mail.Client) {
	_ = c.Close()
}

// contentType returns the declared type, else one guessed from the file
// extension, else one sniffed from the first bytes.
func contentType(a mailer.Attachment) string {
	if a.ContentType != "" && a.ContentType != "application/octet-stream" {
		return a.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(a.Filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(a.Content)
}
