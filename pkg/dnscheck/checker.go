// Package dnscheck resolves an SMTP host before a connection attempt so that
// naming problems are reported separately from SMTP failures.
package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// Config configures the resolver.
type Config struct {
	// Nameservers as host:port. Empty means /etc/resolv.conf, then public resolvers.
	Nameservers []string      `env:"DNS_NAMESERVERS" envSeparator:","`
	Timeout     time.Duration `env:"DNS_TIMEOUT" envDefault:"5s"`
	Retries     int           `env:"DNS_RETRIES" envDefault:"2"`
	// CacheTTL keeps successful reports; 0 disables caching.
	CacheTTL  time.Duration `env:"DNS_CACHE_TTL" envDefault:"5m"`
	CacheSize int           `env:"DNS_CACHE_SIZE" envDefault:"256"`
}

// MX is one mail exchanger.
type MX struct {
	Host string `json:"host"`
	Pref uint16 `json:"preference"`
}

// Report is the outcome of a successful check.
type Report struct {
	Host      string        `json:"host"`
	Addresses []string      `json:"addresses"`
	MX        []MX          `json:"mx,omitempty"`
	Duration  time.Duration `json:"-"`
	IPLiteral bool          `json:"ipLiteral"`
}

// Checker queries A, AAAA and MX records in parallel.
type Checker struct {
	client      *dns.Client
	nameservers []string
	retries     int
}

// New creates a Checker.
func New(cfg Config) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	servers := slices.Clone(cfg.Nameservers)
	if len(servers) == 0 {
		servers = systemNameservers()
	}
	for i, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			servers[i] = net.JoinHostPort(s, "53")
		}
	}

	return &Checker{
		client:      &dns.Client{Timeout: cfg.Timeout},
		nameservers: servers,
		retries:     cfg.Retries,
	}
}

func systemNameservers() []string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	out := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		out = append(out, net.JoinHostPort(s, conf.Port))
	}
	return out
}

// Check resolves host. IP literals are returned as-is without querying.
func (c *Checker) Check(ctx context.Context, host string) (*Report, error) {
	start := time.Now()
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return nil, ErrInvalidHost
	}

	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return &Report{Host: host, Addresses: []string{ip.String()}, IPLiteral: true, Duration: time.Since(start)}, nil
	}
	if _, ok := dns.IsDomainName(host); !ok || strings.ContainsAny(host, " /:@") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}

	var (
		mu    sync.Mutex
		addrs []string
		mxs   []MX
		errs  []error
	)
	collect := func(a []string, m []MX, err error) {
		mu.Lock()
		defer mu.Unlock()
		addrs = append(addrs, a...)
		mxs = append(mxs, m...)
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeMX} {
		g.Go(func() error {
			resp, err := c.query(gctx, host, qtype)
			if err != nil {
				collect(nil, nil, err)
				return nil
			}
			a, m := parseAnswer(resp.Answer)
			collect(a, m, nil)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(addrs) == 0 && len(mxs) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, host)
	}

	slices.Sort(addrs)
	slices.SortFunc(mxs, func(a, b MX) int {
		if a.Pref != b.Pref {
			return int(a.Pref) - int(b.Pref)
		}
		return strings.Compare(a.Host, b.Host)
	})

	return &Report{Host: host, Addresses: slices.Compact(addrs), MX: mxs, Duration: time.Since(start)}, nil
}

func parseAnswer(rrs []dns.RR) ([]string, []MX) {
	var (
		addrs []string
		mxs   []MX
	)
	for _, rr := range rrs {
		switch v := rr.(type) {
		case *dns.A:
			addrs = append(addrs, v.A.String())
		case *dns.AAAA:
			addrs = append(addrs, v.AAAA.String())
		case *dns.MX:
			mxs = append(mxs, MX{Host: strings.TrimSuffix(v.Mx, "."), Pref: v.Preference})
		}
	}
	return addrs, mxs
}

// query sends one question to each nameserver in turn, retrying transient failures.
func (c *Checker) query(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for range c.retries + 1 {
		for _, server := range c.nameservers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			resp, _, err := c.client.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = errors.Join(ErrQueryFailed, err)
				continue
			}

			switch resp.Rcode {
			case dns.RcodeSuccess:
				return resp, nil
			case dns.RcodeNameError:
				return nil, ErrNotFound
			case dns.RcodeServerFailure:
				lastErr = ErrServFail
			case dns.RcodeRefused:
				lastErr = ErrRefused
			default:
				lastErr = fmt.Errorf("%w: rcode %s", ErrQueryFailed, dns.RcodeToString[resp.Rcode])
			}
		}
	}
	if lastErr == nil {
		lastErr = ErrServFail
	}
	return nil, lastErr
}
