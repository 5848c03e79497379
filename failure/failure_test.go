// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Len(t, kindNames, int(kindSentinel))
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "initialization", Initialization.String())
	assert.Equal(t, "network", Network.String())
	assert.Equal(t, "authentication", Authentication.String())
	assert.Equal(t, "validation", Validation.String())
	assert.Equal(t, "serialization", Serialization.String())
	assert.Equal(t, "cancellation", Cancellation.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestReason_String(t *testing.T) {
	assert.Len(t, reasonNames, int(reasonSentinel))
	assert.Equal(t, "missing credential", MissingCredential.String())
	assert.Equal(t, "plan timeout", PlanTimeout.String())
	assert.Equal(t, "reason(-1)", Reason(-1).String())
}

func TestError_Error(t *testing.T) {
	testCases := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "kind only",
			err:      &Error{Kind: Network},
			expected: "network",
		},
		{
			name:     "with request",
			err:      (&Error{Kind: Authentication, Reason: MissingCredential}).At("POST", "http://x"),
			expected: `Post "http://x": authentication: missing credential`,
		},
		{
			name: "validation payload",
			err: &Error{
				Kind:       Validation,
				Reason:     UnacceptableStatusCode,
				StatusCode: 503,
			},
			expected: "validation: unacceptable status code 503",
		},
		{
			name: "detail and cause",
			err: &Error{
				Kind:   Validation,
				Reason: UnacceptableContentType,
				Detail: "text/html",
				Err:    errors.New("boom"),
			},
			expected: "validation: unacceptable content type (text/html): boom",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestError_At(t *testing.T) {
	e := New(Network, Unspecified, nil)
	e.At("", "http://first")
	e.At("PUT", "http://second")
	assert.Equal(t, "Get", e.Op)
	assert.Equal(t, "http://first", e.URL)
}

func TestError_Timeout(t *testing.T) {
	assert.False(t, New(Network, Unspecified, nil).Timeout())
	assert.False(t, New(Network, Unspecified, syscall.ECONNRESET).Timeout())
	assert.True(t, New(Network, Unspecified, syscall.ETIMEDOUT).Timeout())
	assert.True(t, New(Network, Unspecified, &url.Error{Err: context.DeadlineExceeded}).Timeout())
	assert.True(t, New(Cancellation, PlanTimeout, nil).Timeout())
}

func TestError_Unwrap(t *testing.T) {
	e := New(Network, Unspecified, fmt.Errorf("dial: %w", syscall.ECONNREFUSED))
	assert.True(t, errors.Is(e, syscall.ECONNREFUSED))
	var errno syscall.Errno
	require.True(t, errors.As(e, &errno))
	assert.Equal(t, syscall.ECONNREFUSED, errno)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(Network, nil))
	plain := errors.New("plain")
	w := Wrap(Network, plain)
	assert.Equal(t, Network, w.Kind)
	assert.Same(t, plain, w.Err)
	assert.Same(t, w, Wrap(Network, w))
	outer := Wrap(Initialization, w)
	assert.NotSame(t, w, outer)
	assert.Same(t, w, outer.Err)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	fe := New(Validation, Unspecified, nil)
	assert.Same(t, fe, Classify(fe))
	c := Classify(errors.New("x"))
	assert.Equal(t, Unknown, c.Kind)
}

func TestChainInspection(t *testing.T) {
	inner := New(Authentication, MissingCredential, nil)
	outer := Wrap(Initialization, fmt.Errorf("adapt: %w", inner))
	assert.Equal(t, Initialization, KindOf(outer))
	assert.Equal(t, MissingCredential, ReasonOf(outer))
	assert.True(t, Has(outer, Authentication))
	assert.True(t, Has(outer, Initialization))
	assert.False(t, Has(outer, Network))
	assert.Equal(t, Unknown, KindOf(errors.New("x")))
	assert.Equal(t, Unspecified, ReasonOf(nil))
}

func TestOp(t *testing.T) {
	assert.Equal(t, "Get", Op(""))
	assert.Equal(t, "Get", Op("GET"))
	assert.Equal(t, "G", Op("G"))
	assert.Equal(t, "Xyz", Op("XYZ"))
	assert.Equal(t, "Put", Op("PUT"))
}
