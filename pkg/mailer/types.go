package mailer

import (
	"fmt"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Mode selects how a session authenticates and whether encryption is mandatory.
type Mode string

const (
	// ModeAuth always supplies credentials. STARTTLS is used when the server offers it.
	ModeAuth Mode = "auth"
	// ModeAnonymous never supplies credentials.
	ModeAnonymous Mode = "anonymous"
	// ModeSTARTTLS requires an encrypted channel before any credential exchange
	// and supplies credentials only when both username and password are present.
	ModeSTARTTLS Mode = "starttls"
)

// ImplicitTLSPort is the submission port where TLS starts with the connection.
const ImplicitTLSPort = 465

// ParseMode converts user input into a Mode. An empty string means ModeAuth.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuth, nil
	case ModeAuth, ModeAnonymous, ModeSTARTTLS:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ConnectionParams identifies an SMTP endpoint and how to authenticate against it.
type ConnectionParams struct {
	Host     string `json:"host"`
	Mode     Mode   `json:"mode"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
	Port     int    `json:"port"`
}

// Validate reports the first missing or malformed field.
func (p ConnectionParams) Validate() error {
	if strings.TrimSpace(p.Host) == "" {
		return ErrNoHost
	}
	if p.Port < 1 || p.Port > 65535 {
		return ErrInvalidPort
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	return nil
}

// Addr returns the dialable host:port pair.
func (p ConnectionParams) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// String formats the endpoint the way operators type it.
func (p ConnectionParams) String() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// ImplicitTLS reports whether TLS must be negotiated from connection start.
func (p ConnectionParams) ImplicitTLS() bool {
	return p.Port == ImplicitTLSPort
}

// Credentials returns the username and password to present, if any, for the mode.
func (p ConnectionParams) Credentials() (username, password string, ok bool) {
	mode, _ := ParseMode(string(p.Mode))
	switch mode {
	case ModeAuth:
		return p.Username, p.Password, true
	case ModeSTARTTLS:
		if p.Username != "" && p.Password != "" {
			return p.Username, p.Password, true
		}
	}
	return "", "", false
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Envelope holds the addressing of one message.
type Envelope struct {
	From string   `json:"from"`
	To   []string `json:"to"`
	CC   []string `json:"cc,omitempty"`
	BCC  []string `json:"bcc,omitempty"`
}

// Validate requires a sender and at least one primary recipient.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.From) == "" {
		return ErrNoSender
	}
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	return nil
}

// Recipients lists every RCPT TO address: To, then CC, then BCC.
func (e Envelope) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	return append(out, e.BCC...)
}

// Format is the source format of a message body.
type Format string

const (
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Content is the subject and body of a message before delivery.
// Template, when set, names a markdown template rendered with Data instead of Body.
type Content struct {
	Data     map[string]any `json:"data,omitempty"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	Format   Format         `json:"format,omitempty"`
	Template string         `json:"template,omitempty"`
	// Text is the plain-text alternative for HTML bodies. Filled during rendering.
	Text   string `json:"-"`
	IsHTML bool   `json:"isHtml"`
}

// EffectiveFormat resolves the body format, honouring the IsHTML shorthand.
func (c Content) EffectiveFormat() Format {
	if c.Format != "" {
		return c.Format
	}
	if c.IsHTML {
		return FormatHTML
	}
	return FormatText
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	Content     []byte // Raw file content
}

// Message is everything needed for one delivery attempt.
type Message struct {
	Envelope    Envelope
	Content     Content
	Attachments []Attachment
}

// Clone returns a copy that can be mutated without affecting m.
// Attachment bytes are shared since they are never modified.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := &Message{
		Envelope: Envelope{
			From: m.Envelope.From,
			To:   slices.Clone(m.Envelope.To),
			CC:   slices.Clone(m.Envelope.CC),
			BCC:  slices.Clone(m.Envelope.BCC),
		},
		Content:     m.Content,
		Attachments: slices.Clone(m.Attachments),
	}
	out.Content.Data = maps.Clone(m.Content.Data)
	return out
}

// DeliveryEnvelope is the SMTP envelope actually used for a delivery.
type DeliveryEnvelope struct {
	From string   `json:"from"`
	To   []string `json:"to"`
}

// Result describes an accepted message.
type Result struct {
	MessageID string           `json:"messageId"`
	Response  string           `json:"response"`
	Envelope  DeliveryEnvelope `json:"envelope"`
	Duration  time.Duration    `json:"-"`
}
