package smtp_test

import (
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/require"
)

// received is one message accepted by the fake server.
type received struct {
	From string
	To   []string
	Data string
	User string
}

// fakeServer is an in-process SMTP server with scriptable rejections.
type fakeServer struct {
	users      map[string]string
	rejectRcpt map[string]bool
	rejectFrom map[string]bool
	messages   []received
	mu         sync.Mutex
	addr       *net.TCPAddr
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{
		users:      map[string]string{"tester": "secret"},
		rejectRcpt: map[string]bool{},
		rejectFrom: map[string]bool{},
	}

	srv := gosmtp.NewServer(fs)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	fs.addr = ln.Addr().(*net.TCPAddr)

	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	return fs
}

func (fs *fakeServer) host() string { return fs.addr.IP.String() }
func (fs *fakeServer) port() int    { return fs.addr.Port }

func (fs *fakeServer) inbox() []received {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]received(nil), fs.messages...)
}

func (fs *fakeServer) NewSession(_ *gosmtp.Conn) (gosmtp.Session, error) {
	return &fakeSession{srv: fs}, nil
}

type fakeSession struct {
	srv  *fakeServer
	user string
	msg  received
}

func (s *fakeSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *fakeSession) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if want, ok := s.srv.users[username]; !ok || want != password {
			return &gosmtp.SMTPError{
				Code:         535,
				EnhancedCode: gosmtp.EnhancedCode{5, 7, 8},
				Message:      "Authentication credentials invalid",
			}
		}
		s.user = username
		return nil
	}), nil
}

func (s *fakeSession) Mail(from string, _ *gosmtp.MailOptions) error {
	if s.srv.rejectFrom[from] {
		return &gosmtp.SMTPError{Code: 553, EnhancedCode: gosmtp.EnhancedCode{5, 7, 1}, Message: "Sender not allowed"}
	}
	s.msg = received{From: from, User: s.user}
	return nil
}

func (s *fakeSession) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	if s.srv.rejectRcpt[to] {
		return &gosmtp.SMTPError{Code: 550, EnhancedCode: gosmtp.EnhancedCode{5, 1, 1}, Message: "Mailbox unavailable"}
	}
	s.msg.To = append(s.msg.To, to)
	return nil
}

func (s *fakeSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.Data = string(b)

	s.srv.mu.Lock()
	s.srv.messages = append(s.srv.messages, s.msg)
	s.srv.mu.Unlock()
	return nil
}

func (s *fakeSession) Reset() { s.msg = received{} }

func (s *fakeSession) Logout() error { return nil }

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return port
}

