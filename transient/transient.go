// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strconv"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize.
//
// The category Not means the error is not transient from the perspective
// of completing an HTTP request attempt successfully, or in other words
// that a retry after encountering this error is very unlikely to succeed.
//
// All other categories indicate the error is transient from the
// perspective of completing an HTTP request attempt successfully, or in
// other words that a retry after encountering this error has some
// prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer (increasing its timeout).
	//
	// Function Categorize returns Timeout if the error or any of its
	// wrapped causes has a Timeout method that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Although connection refusal may be a permanent condition, it is
	// classified as transient because it can happen if the service
	// running on the remote host is in the process of starting or
	// restarting.
	ConnRefused
	// ConnLost indicates a previously established connection was severed
	// before the response was fully received: ECONNRESET, ECONNABORTED,
	// EPIPE, or an unexpected end of stream.
	//
	// Connection loss is not uncommon if a service on the remote host
	// comes down while it is still responding to a request, or if the
	// remote host is a load balancer recycling idle connections. It
	// tends to indicate a high probability of success on retry.
	ConnLost
	// DNS indicates the host name could not be resolved.
	DNS
	// Unreachable indicates the network or host is unreachable or down
	// (ENETUNREACH, EHOSTUNREACH, ENETDOWN, EHOSTDOWN).
	Unreachable
	// TLS indicates the secure connection could not be established,
	// including failed certificate verification.
	TLS
	categorySentinel
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnLost",
	"DNS",
	"Unreachable",
	"TLS",
}

// Categories returns every transient category, i.e. every category
// except Not.
func Categories() []Category {
	return []Category{Timeout, ConnRefused, ConnLost, DNS, Unreachable, TLS}
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || c >= categorySentinel {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of the given error. All
// non-nil transient errors result in a transience category other than
// Not. A nil error, an error that is not transient from the perspective
// of completing an HTTP request attempt, and a context cancellation all
// produce the return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil || errors.Is(err, context.Canceled) {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE:
			return ConnLost
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.ENETDOWN, syscall.EHOSTDOWN:
			return Unreachable
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return ConnLost
	}

	if isTLS(err) {
		return TLS
	}

	return Not
}

func isTLS(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	var invalid x509.CertificateInvalidError
	var hostname x509.HostnameError
	var header tls.RecordHeaderError
	var verification *tls.CertificateVerificationError
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &invalid) ||
		errors.As(err, &hostname) ||
		errors.As(err, &header) ||
		errors.As(err, &verification)
}

type hasTimeout interface {
	Timeout() bool
}
