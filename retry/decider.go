// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"
	"time"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, Methods, StatusCode, Category,
// and Before, and the built-in decider TransientErr; or implement your
// Decider. Use DeciderFunc to convert an ordinary function into a
// Decider, and to compose deciders logically using DeciderFunc.And and
// DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
//
// Simple DeciderFunc functions can be composed into complex decision
// trees using the logical composition functions DeciderFunc.And and
// DeciderFunc.Or. Because of this composition ability, it will often
// be convenient to work directly with DeciderFunc rather than with
// Decider.
type DeciderFunc func(e *request.Execution) bool

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it will always return false
// if the most recent attempt failed because its response was rejected.
// Compose it with other deciders, for example a status code decider
// constructed with StatusCode, to get more complex functionality.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current HTTP request plan execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the execution attempt index
// e.Attempt is less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the logical HTTP request
// plan execution. The returned decider returns true while the execution
// duration is less than d, and false afterward.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// Methods constructs a retry decider allowing retries only for the
// listed HTTP methods. Method names are compared case-sensitively, as
// HTTP methods are, and the empty method is treated as GET.
func Methods(ms ...string) DeciderFunc {
	set := make(map[string]bool, len(ms))
	for _, m := range ms {
		set[m] = true
	}
	return func(e *request.Execution) bool {
		return set[Method(e)]
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code. If the most recent request attempt within
// the plan execution received a valid HTTP response, and the response
// status code is contained in the list ss, the decider returns true.
// Otherwise, it returns false.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

// Category constructs a retry decider allowing retries when the most
// recent error falls into one of the given transient error categories.
func Category(cs ...transient.Category) DeciderFunc {
	var mask uint64
	for _, c := range cs {
		mask |= 1 << uint(c)
	}
	return func(e *request.Execution) bool {
		c := transient.Categorize(e.Err)
		return c != transient.Not && mask&(1<<uint(c)) != 0
	}
}

// Method returns the HTTP method of the execution's current attempt,
// falling back to the plan's method before the first attempt is built.
// The empty method is reported as GET.
func Method(e *request.Execution) string {
	var m string
	if e.Request != nil {
		m = e.Request.Method
	} else if e.Plan != nil {
		m = e.Plan.Method
	}
	if m == "" {
		return http.MethodGet
	}
	return m
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err) != transient.Not
}
