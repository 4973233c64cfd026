package dnscheck

import "errors"

var (
	// ErrInvalidHost is returned for an empty or syntactically invalid host name.
	ErrInvalidHost = errors.New("dnscheck: invalid host")

	// ErrNotFound is returned when the host has no A, AAAA or MX records.
	ErrNotFound = errors.New("dnscheck: no records found")

	// ErrServFail is returned when every nameserver answered SERVFAIL.
	ErrServFail = errors.New("dnscheck: server failure")

	// ErrRefused is returned when nameservers refused the query.
	ErrRefused = errors.New("dnscheck: query refused")

	// ErrQueryFailed wraps transport errors talking to nameservers.
	ErrQueryFailed = errors.New("dnscheck: query failed")
)
