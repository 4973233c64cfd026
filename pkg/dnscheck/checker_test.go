package dnscheck_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/pkg/dnscheck"
)

// startDNS serves a fixed zone on a local UDP port.
func startDNS(t *testing.T) string {
	t.Helper()

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		q := req.Question[0]

		switch q.Name {
		case "mail.example.test.":
			switch q.Qtype {
			case dns.TypeA:
				resp.Answer = append(resp.Answer, mustRR(t, "mail.example.test. 60 IN A 192.0.2.10"))
			case dns.TypeAAAA:
				resp.Answer = append(resp.Answer, mustRR(t, "mail.example.test. 60 IN AAAA 2001:db8::10"))
			}
		case "example.test.":
			if q.Qtype == dns.TypeMX {
				resp.Answer = append(resp.Answer,
					mustRR(t, "example.test. 60 IN MX 20 backup.example.test."),
					mustRR(t, "example.test. 60 IN MX 10 mail.example.test."),
				)
			}
		case "broken.example.test.":
			resp.Rcode = dns.RcodeServerFailure
		case "empty.example.test.":
		default:
			resp.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(resp)
	})

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	<-started

	return pc.LocalAddr().String()
}

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	require.NoError(t, err)
	return rr
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	addr := startDNS(t)
	c := dnscheck.New(dnscheck.Config{Nameservers: []string{addr}, Timeout: time.Second, Retries: 1})
	ctx := context.Background()

	t.Run("addresses", func(t *testing.T) {
		t.Parallel()

		rep, err := c.Check(ctx, " Mail.Example.Test. ")
		require.NoError(t, err)
		require.Equal(t, "mail.example.test", rep.Host)
		require.Equal(t, []string{"192.0.2.10", "2001:db8::10"}, rep.Addresses)
		require.Empty(t, rep.MX)
		require.False(t, rep.IPLiteral)
	})

	t.Run("mx only, sorted by preference", func(t *testing.T) {
		t.Parallel()

		rep, err := c.Check(ctx, "example.test")
		require.NoError(t, err)
		require.Empty(t, rep.Addresses)
		require.Equal(t, []dnscheck.MX{
			{Host: "mail.example.test", Pref: 10},
			{Host: "backup.example.test", Pref: 20},
		}, rep.MX)
	})

	t.Run("ip literal skips queries", func(t *testing.T) {
		t.Parallel()

		rep, err := c.Check(ctx, "[::1]")
		require.NoError(t, err)
		require.True(t, rep.IPLiteral)
		require.Equal(t, []string{"::1"}, rep.Addresses)
	})

	t.Run("nxdomain", func(t *testing.T) {
		t.Parallel()

		_, err := c.Check(ctx, "missing.example.test")
		require.ErrorIs(t, err, dnscheck.ErrNotFound)
	})

	t.Run("no records", func(t *testing.T) {
		t.Parallel()

		_, err := c.Check(ctx, "empty.example.test")
		require.ErrorIs(t, err, dnscheck.ErrNotFound)
	})

	t.Run("servfail", func(t *testing.T) {
		t.Parallel()

		_, err := c.Check(ctx, "broken.example.test")
		require.ErrorIs(t, err, dnscheck.ErrServFail)
	})

	t.Run("invalid host", func(t *testing.T) {
		t.Parallel()

		for _, h := range []string{"", "   ", "bad host", "user@example.test", "a/b"} {
			_, err := c.Check(ctx, h)
			require.ErrorIs(t, err, dnscheck.ErrInvalidHost, h)
		}
	})
}

func TestChecker_Unreachable(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := pc.LocalAddr().String()
	require.NoError(t, pc.Close())

	c := dnscheck.New(dnscheck.Config{Nameservers: []string{addr}, Timeout: 200 * time.Millisecond, Retries: 0})
	_, err = c.Check(context.Background(), "mail.example.test")
	require.ErrorIs(t, err, dnscheck.ErrQueryFailed)
}

func TestChecker_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := dnscheck.New(dnscheck.Config{Nameservers: []string{startDNS(t)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Check(ctx, "mail.example.test")
	require.ErrorIs(t, err, context.Canceled)
}
