package mailer

import "errors"

var (
	// ErrNoHost indicates the connection parameters have no host.
	ErrNoHost = errors.New("mailer: host is required")

	// ErrInvalidPort indicates the port is outside 1-65535.
	ErrInvalidPort = errors.New("mailer: invalid port")

	// ErrInvalidMode indicates an unknown connection mode.
	ErrInvalidMode = errors.New("mailer: invalid connection mode")

	// ErrNoSender indicates no sender address was specified.
	ErrNoSender = errors.New("mailer: sender is required")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: at least one recipient is required")

	// ErrUnsupportedFormat indicates a body format the gateway cannot deliver as-is.
	ErrUnsupportedFormat = errors.New("mailer: unsupported body format")

	// ErrNetwork marks transport failures that happened before the server could answer.
	ErrNetwork = errors.New("mailer: network error")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("mailer: template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("mailer: layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("mailer: failed to render content")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
)

// ErrorDetail is the raw diagnostic payload attached to a gateway failure.
type ErrorDetail struct {
	Cause      string   `json:"cause,omitempty"`
	Command    string   `json:"command,omitempty"`
	Transcript []string `json:"transcript,omitempty"`
	Code       int      `json:"code,omitempty"`
}

// GatewayError is a failure reported by the mail server or the session setup
// (greeting, TLS negotiation, authentication, or a rejected command).
type GatewayError struct {
	Err    error
	Detail *ErrorDetail
	Reason string
}

func (e *GatewayError) Error() string {
	return e.Reason
}

// Code returns the SMTP reply code, or 0 if the server never sent one.
func (e *GatewayError) Code() int {
	if e.Detail == nil {
		return 0
	}
	return e.Detail.Code
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AsGatewayError extracts a GatewayError from err if present.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

type networkError struct {
	err error
}

func (e *networkError) Error() string   { return e.err.Error() }
func (e *networkError) Unwrap() []error { return []error{ErrNetwork, e.err} }

// NetworkError marks err as a transport failure. The message is left unchanged.
func NetworkError(err error) error {
	if err == nil {
		return nil
	}
	return &networkError{err: err}
}

// IsNetworkError reports whether err is a transport failure rather than a server answer.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// Details returns the diagnostic payload for err: the gateway detail when the
// server answered, otherwise the bare error text.
func Details(err error) any {
	if err == nil {
		return nil
	}
	if ge, ok := AsGatewayError(err); ok && ge.Detail != nil {
		return ge.Detail
	}
	return map[string]string{"error": err.Error()}
}
