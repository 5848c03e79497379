// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/reqx/request"
)

// A Policy controls if and how retries are done in an HTTP request
// plan execution. In particular, after every failed attempt during the
// HTTP request plan execution, a Policy decides whether a retry should
// be done and, if so, how long the wait period should be before
// retrying the attempt.
//
// The execution passed to Decide describes the failed attempt: its
// Request, Response (nil if the attempt ended in a transport error), and
// Err. The execution's Attempt field is the retry count, zero when the
// first attempt has failed.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines, and should be pure: consulting a policy twice with the
// same execution state must produce the same decision.
//
// While you can implement Policy yourself, it may be more efficient to
// use one of the built-in retry policies, or to construct your policy
// using the NewPolicy constructor using existing Decider and Waiter
// implementations.
type Policy interface {
	Decide(e *request.Execution) Decision
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as retry policies.
type PolicyFunc func(e *request.Execution) Decision

// Decide returns f(e).
func (f PolicyFunc) Decide(e *request.Execution) Decision {
	return f(e)
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It chains the exponential backoff policy built from
// DefaultExponentialConfig with the too-many-requests policy built from
// DefaultTooManyRequestsConfig.
var DefaultPolicy = Chain(
	NewExponential(DefaultExponentialConfig),
	NewTooManyRequests(DefaultTooManyRequestsConfig),
)

// Never is a policy that never retries. It is useful if you want to use
// the other features of reqx.Client but do not want retries.
var Never Policy = PolicyFunc(func(_ *request.Execution) Decision {
	return No()
})

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy. The
// policy decides After(w.Wait(e)) if d.Decide(e) returns true, and No
// otherwise.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("reqx/retry: nil decider")
	}
	if w == nil {
		panic("reqx/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(e *request.Execution) Decision {
	if !p.decider.Decide(e) {
		return No()
	}
	return After(p.waiter.Wait(e))
}

type chain []Policy

// Chain composes policies into one policy which consults them in the
// order given. The first decision other than No wins, and the remaining
// policies are not consulted. If every policy decides No, or ps is
// empty, the chain decides No. Nil policies are skipped.
func Chain(ps ...Policy) Policy {
	c := make(chain, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			c = append(c, p)
		}
	}
	return c
}

func (c chain) Decide(e *request.Execution) Decision {
	for _, p := range c {
		if d := p.Decide(e); d.Variant() != NoRetry {
			return d
		}
	}
	return No()
}
