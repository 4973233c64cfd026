package mailer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuth},
		{in: "auth", want: ModeAuth},
		{in: " STARTTLS ", want: ModeSTARTTLS},
		{in: "anonymous", want: ModeAnonymous},
		{in: "ssl", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidMode, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestConnectionParams(t *testing.T) {
	t.Parallel()

	t.Run("validate", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, ConnectionParams{Port: 25}.Validate(), ErrNoHost)
		require.ErrorIs(t, ConnectionParams{Host: "mx", Port: 0}.Validate(), ErrInvalidPort)
		require.ErrorIs(t, ConnectionParams{Host: "mx", Port: 70000}.Validate(), ErrInvalidPort)
		require.ErrorIs(t, ConnectionParams{Host: "mx", Port: 25, Mode: "x"}.Validate(), ErrInvalidMode)
		require.NoError(t, ConnectionParams{Host: "mx", Port: 25}.Validate())
	})

	t.Run("address", func(t *testing.T) {
		t.Parallel()

		p := ConnectionParams{Host: "::1", Port: 2525}
		require.Equal(t, "[::1]:2525", p.Addr())
		require.Equal(t, "::1:2525", p.String())
		require.False(t, p.ImplicitTLS())
		require.True(t, ConnectionParams{Host: "mx", Port: 465}.ImplicitTLS())
	})

	t.Run("credentials by mode", func(t *testing.T) {
		t.Parallel()

		user, pass, ok := ConnectionParams{Mode: ModeAuth}.Credentials()
		require.True(t, ok)
		require.Empty(t, user)
		require.Empty(t, pass)

		_, _, ok = ConnectionParams{Mode: ModeAnonymous, Username: "u", Password: "p"}.Credentials()
		require.False(t, ok)

		_, _, ok = ConnectionParams{Mode: ModeSTARTTLS, Username: "u"}.Credentials()
		require.False(t, ok)

		user, pass, ok = ConnectionParams{Mode: ModeSTARTTLS, Username: "u", Password: "p"}.Credentials()
		require.True(t, ok)
		require.Equal(t, "u", user)
		require.Equal(t, "p", pass)

		_, _, ok = ConnectionParams{Username: "u", Password: "p"}.Credentials()
		require.True(t, ok, "empty mode behaves as auth")
	})
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Envelope{To: []string{"a@b"}}.Validate(), ErrNoSender)
	require.ErrorIs(t, Envelope{From: "a@b"}.Validate(), ErrNoRecipient)

	e := Envelope{From: "f@x", To: []string{"t@x"}, CC: []string{"c@x"}, BCC: []string{"b@x"}}
	require.NoError(t, e.Validate())
	require.Equal(t, []string{"t@x", "c@x", "b@x"}, e.Recipients())
}

func TestContent_EffectiveFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, FormatText, Content{}.EffectiveFormat())
	require.Equal(t, FormatHTML, Content{IsHTML: true}.EffectiveFormat())
	require.Equal(t, FormatMarkdown, Content{Format: FormatMarkdown, IsHTML: true}.EffectiveFormat())
}

func TestMessage_Clone(t *testing.T) {
	t.Parallel()

	var nilMsg *Message
	require.Nil(t, nilMsg.Clone())

	orig := &Message{
		Envelope:    Envelope{From: "f@x", To: []string{"t@x"}},
		Content:     Content{Subject: "s", Data: map[string]any{"k": "v"}},
		Attachments: []Attachment{{Filename: "a.txt"}},
	}
	cp := orig.Clone()
	cp.Envelope.To[0] = "changed@x"
	cp.Content.Subject = "other"
	cp.Content.Data["k"] = "changed"
	cp.Attachments[0].Filename = "b.txt"

	require.Equal(t, "t@x", orig.Envelope.To[0])
	require.Equal(t, "s", orig.Content.Subject)
	require.Equal(t, "v", orig.Content.Data["k"])
	require.Equal(t, "a.txt", orig.Attachments[0].Filename)
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a@b.c", Recipient("", "a@b.c"))
	require.Equal(t, "Alice <a@b.c>", Recipient("Alice", "a@b.c"))
}

func TestGatewayError(t *testing.T) {
	t.Parallel()

	base := &GatewayError{Reason: "relay denied", Detail: &ErrorDetail{Code: 550, Command: "RCPT TO"}}
	require.Equal(t, "relay denied", base.Error())
	require.Equal(t, 550, base.Code())
	require.Zero(t, (&GatewayError{}).Code())

	wrapped := errorsJoin(base)
	ge, ok := AsGatewayError(wrapped)
	require.True(t, ok)
	require.Same(t, base, ge)
	require.False(t, IsNetworkError(wrapped))

	_, ok = AsGatewayError(ErrNetwork)
	require.False(t, ok)
	require.True(t, IsNetworkError(errorsJoin(ErrNetwork)))

	cause := errors.New("dial tcp 127.0.0.1:1: connection refused")
	netErr := NetworkError(cause)
	require.Equal(t, cause.Error(), netErr.Error())
	require.ErrorIs(t, netErr, ErrNetwork)
	require.ErrorIs(t, netErr, cause)
	require.NoError(t, NetworkError(nil))

	require.Equal(t, "no detail", (&GatewayError{Reason: "no detail"}).Error())
}

func TestDetails(t *testing.T) {
	t.Parallel()

	require.Nil(t, Details(nil))

	detail := &ErrorDetail{Code: 535, Command: "AUTH"}
	require.Same(t, detail, Details(&GatewayError{Reason: "Invalid login: 535", Detail: detail}))

	require.Equal(t, map[string]string{"error": "bare"}, Details(&GatewayError{Reason: "bare"}))
	require.Equal(t, map[string]string{"error": "refused"}, Details(NetworkError(errors.New("refused"))))
}
