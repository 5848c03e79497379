// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"errors"
	"strconv"
	"strings"
)

// A Kind is the top-level class of an error.
type Kind int

const (
	// Unknown is the catch-all kind for errors not classified below.
	Unknown Kind = iota
	// Initialization indicates the request could not be prepared for
	// sending, for example because an adapter or authenticator failed.
	// Initialization errors are never retried.
	Initialization
	// Network indicates a transport-level failure: connection refused
	// or lost, timeout, DNS failure, TLS failure, and so on.
	Network
	// Authentication indicates a credential could not be obtained or
	// applied.
	Authentication
	// Validation indicates a response was received but rejected by the
	// response validator.
	Validation
	// Serialization indicates a valid response body could not be
	// decoded.
	Serialization
	// Cancellation indicates the request plan's context was cancelled
	// or its deadline was exceeded.
	Cancellation
	kindSentinel
)

var kindNames = []string{
	"unknown",
	"initialization",
	"network",
	"authentication",
	"validation",
	"serialization",
	"cancellation",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindSentinel {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// A Reason refines a Kind. The zero value, Unspecified, means the kind
// alone describes the error.
type Reason int

const (
	Unspecified Reason = iota

	// Authentication reasons.
	MissingCredential
	MissingAuthenticator
	ExcessiveRefresh
	RefreshFailed
	AuthenticationFailed

	// Validation reasons.
	UnacceptableStatusCode
	UnacceptableContentType
	MissingContentType
	MissingHeader
	TrustEvaluationFailed

	// Serialization reasons.
	DecodingFailed
	EmptyResponse

	// Cancellation reasons.
	Cancelled
	PlanTimeout

	reasonSentinel
)

var reasonNames = []string{
	"unspecified",
	"missing credential",
	"missing authenticator",
	"excessive refresh",
	"refresh failed",
	"authentication failed",
	"unacceptable status code",
	"unacceptable content type",
	"missing content type",
	"missing header",
	"trust evaluation failed",
	"decoding failed",
	"empty response",
	"cancelled",
	"plan timeout",
}

// String returns a short human-readable description of the reason.
func (r Reason) String() string {
	if r < 0 || r >= reasonSentinel {
		return "reason(" + strconv.Itoa(int(r)) + ")"
	}
	return reasonNames[r]
}

// Error is the structured error type of the reqx taxonomy.
//
// Op and URL identify the logical request, in the same manner as
// url.Error from net/url. StatusCode and Detail carry the structured
// payload of Validation errors (the rejected status code, content type,
// or header name). Err is the wrapped cause, if any.
type Error struct {
	Kind       Kind
	Reason     Reason
	Op         string
	URL        string
	StatusCode int
	Detail     string
	Err        error
}

// New constructs an Error of the given kind and reason wrapping err,
// which may be nil.
func New(kind Kind, reason Reason, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" || e.URL != "" {
		b.WriteString(e.Op)
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(e.URL))
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Reason != Unspecified {
		b.WriteString(": ")
		b.WriteString(e.Reason.String())
	}
	if e.StatusCode != 0 {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(e.StatusCode))
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteByte(')')
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error was caused by a timeout, either of
// an individual attempt or of the whole plan.
func (e *Error) Timeout() bool {
	if e.Reason == PlanTimeout {
		return true
	}
	var t timeouter
	return errors.As(e.Err, &t) && t.Timeout()
}

// At returns e after recording the logical request's method and URL on
// it, unless they are already recorded.
func (e *Error) At(method, url string) *Error {
	if e.Op == "" && e.URL == "" {
		e.Op = Op(method)
		e.URL = url
	}
	return e
}

// Wrap classifies err as kind. If err already is a *Error of the same
// kind, it is returned as is. Otherwise a new *Error wrapping err is
// returned. Wrap returns nil if err is nil.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*Error); ok && fe.Kind == kind {
		return fe
	}
	return &Error{Kind: kind, Err: err}
}

// Classify returns err as a *Error. An err which already is a *Error is
// returned as is, and any other non-nil error is wrapped as Unknown.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*Error); ok {
		return fe
	}
	return &Error{Kind: Unknown, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// Unknown if there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// ReasonOf returns the first reason other than Unspecified found in
// err's chain of *Error values.
func ReasonOf(err error) Reason {
	for err != nil {
		if fe, ok := err.(*Error); ok && fe.Reason != Unspecified {
			return fe.Reason
		}
		err = errors.Unwrap(err)
	}
	return Unspecified
}

// Has reports whether any *Error in err's chain has the given kind.
func Has(err error, kind Kind) bool {
	for err != nil {
		if fe, ok := err.(*Error); ok && fe.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Op converts an HTTP method into the operation name used in error
// messages, following net/http's convention ("GET" becomes "Get").
func Op(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}

type timeouter interface {
	Timeout() bool
}
