package mailer

import "context"

// Verifier establishes and verifies a session without sending content.
type Verifier interface {
	// Verify returns nil when the server accepted the session, a *GatewayError
	// for server-side rejections, or an error wrapping ErrNetwork for transport failures.
	Verify(ctx context.Context, params ConnectionParams) error
}

// Sender delivers a single message.
type Sender interface {
	// Send delivers msg over a fresh session described by params.
	// Failures follow the same taxonomy as Verify.
	Send(ctx context.Context, params ConnectionParams, msg *Message) (*Result, error)
}

// Gateway is the full mail transport contract.
type Gateway interface {
	Verifier
	Sender
}
