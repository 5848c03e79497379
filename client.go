// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gogama/reqx/auth"
	"github.com/gogama/reqx/dispatch"
	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/intercept"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/timeout"
	"github.com/gogama/reqx/transient"
	"github.com/gogama/reqx/validate"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Client is a robust HTTP client with retry support. Its zero value
// is a valid configuration.
//
// The zero value client uses http.DefaultClient (from net/http) as the
// HTTPDoer, timeout.DefaultPolicy as the timeout policy,
// retry.DefaultPolicy as the only retry policy, validate.Default as the
// response validator, no authenticators or interceptors, and an empty
// handler group.
//
// Client's HTTPDoer typically has an internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines,
// provided its fields are not changed while it is in use.
//
// Each plan execution runs the following loop until an attempt
// succeeds or the execution fails:
//
// • adapt: the attempt's request is built from the plan, then handed
// to the authenticator serving the plan's authentication descriptor (if
// the descriptor is not request.NoAuth), then to the Adapt method of
// each interceptor in order. An adaptation failure ends the execution
// with a failure.Initialization error, without sending anything and
// without consulting the retry policies;
//
// • send: the request is sent using the HTTPDoer and the response body
// is read in full. Transport errors are classified as failure.Network,
// except TLS trust failures which are classified as failure.Validation
// with reason failure.TrustEvaluationFailed;
//
// • validate: the response is checked by the Validator. A rejected
// response is a failed attempt;
//
// • evaluate: if the plan's context is done, the execution fails with a
// failure.Cancellation error. Otherwise, for a failed attempt, the
// retry policies are consulted in order, followed by the authenticator
// (if it is a retry.Policy) and then each interceptor. The first
// decision other than retry.NoRetry is used;
//
// • wait: on a decision to retry, the client waits out the decided
// delay, unless the plan's context is done first, and then begins the
// next attempt from adaptation, so refreshed credentials and headers
// apply to every retry.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer
	// RetryPolicies decide whether to retry failed attempts and how
	// long to wait before retrying. They are consulted in order and
	// the first decision other than retry.NoRetry is used.
	//
	// If RetryPolicies is nil, retry.DefaultPolicy is used. Use an
	// empty non-nil slice to make no retries beyond those decided by
	// the authenticator and interceptors.
	RetryPolicies []retry.Policy
	// Authenticators stamp credentials onto request attempts. The
	// first authenticator whose descriptor equals the plan's
	// authentication descriptor is used. Plans whose descriptor is
	// request.NoAuth are not authenticated.
	Authenticators []auth.Authenticator
	// Interceptors adapt every request attempt, after authentication,
	// in order, and are consulted for a retry decision after the retry
	// policies and the authenticator.
	Interceptors []intercept.Interceptor
	// Validator decides whether a response is acceptable.
	//
	// If Validator is nil, validate.Default is used.
	Validator validate.Validator
	// TimeoutPolicy specifies how to set timeouts on individual request
	// attempts.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of a request plan.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
}

// Do executes an HTTP request plan and returns the results, following
// the policies set on Client, and low-level policy set on the
// underlying HTTPDoer.
//
// The result returned is the result after the final HTTP request
// attempt made during the plan execution, as determined by the retry
// policies.
//
// The returned Execution is never nil. If an error is returned, it is
// a *failure.Error, recording the plan's method and URL, and the Err
// field of the Execution references the same error. The Response and
// Body of the final attempt are kept even when the attempt failed, for
// example when the response was rejected by the validator.
//
// If the returned error is nil, the returned Execution will contain
// both a non-nil Response and a non-nil Body (although Body may have
// zero length).
//
// For simple use cases, the Get, Head, Post, and PostForm methods may
// prove easier to use than Do.
func (c *Client) Do(p *request.Plan) (*request.Execution, error) {
	e := &request.Execution{
		Plan: p,
	}

	handlers := c.Handlers
	handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()

	if e.Plan == nil {
		panic("reqx: plan deleted from execution")
	}
	x := c.executor(e.Plan)
	x.handlers = handlers
	x.execute(e)

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, e)
	return e, e.Err
}

// Go executes an HTTP request plan on a new goroutine, in the same way
// as Do, and delivers the result to f exactly once by way of d. If d is
// nil, dispatch.Inline is used, so f runs on the execution goroutine.
//
// Only f goes through d. Attempts, retry waits and event handlers all
// run on the execution goroutine, so handlers must not assume they run
// on the caller's goroutine. To serialize callbacks touching shared
// state, pass a dispatch.Queue, which runs them one at a time on a
// single goroutine.
//
// To cancel the execution, cancel the plan's context.
func (c *Client) Go(p *request.Plan, d dispatch.Dispatcher, f func(*request.Execution, error)) {
	if f == nil {
		panic("reqx: nil callback")
	}
	if d == nil {
		d = dispatch.Inline
	}
	go func() {
		e, err := c.Do(p)
		d.Dispatch(func() {
			f(e, err)
		})
	}()
}

// An executor holds the collaborators resolved for one plan execution.
type executor struct {
	doer         HTTPDoer
	timeout      timeout.Policy
	validator    validate.Validator
	auth         auth.Authenticator
	authErr      error
	interceptors []intercept.Interceptor
	policy       retry.Policy
	handlers     *HandlerGroup
}

func (c *Client) executor(p *request.Plan) *executor {
	x := &executor{
		doer:         c.doer(),
		timeout:      c.TimeoutPolicy,
		validator:    c.Validator,
		interceptors: c.Interceptors,
	}
	if x.timeout == nil {
		x.timeout = timeout.DefaultPolicy
	}
	if x.validator == nil {
		x.validator = validate.Default
	}

	policies := c.RetryPolicies
	if policies == nil {
		policies = []retry.Policy{retry.DefaultPolicy}
	}
	chain := make([]retry.Policy, 0, len(policies)+1+len(c.Interceptors))
	chain = append(chain, policies...)

	if d := p.Auth(); d != request.NoAuth {
		x.auth, x.authErr = auth.Lookup(c.Authenticators, d)
		if rp, ok := x.auth.(retry.Policy); ok {
			chain = append(chain, rp)
		}
	}

	chain = append(chain, intercept.Policies(c.Interceptors...)...)
	x.policy = retry.Chain(chain...)
	return x
}

func (x *executor) execute(e *request.Execution) {
	p := e.Plan
	ctx := request.NewContext(p.Context(), e)

	for {
		adapted := x.attempt(ctx, e)
		m := e.LastMetrics()
		m.End = time.Now()
		m.StatusCode = e.StatusCode()
		m.Err = e.Err
		if e.Timeout() {
			e.AttemptTimeouts++
			x.handlers.run(AfterAttemptTimeout, e)
		}
		x.handlers.run(AfterAttempt, e)

		if e.Err == nil {
			return
		}
		if err := p.Context().Err(); err != nil {
			x.cancel(e, err)
			return
		}
		if !adapted {
			return
		}

		d := x.policy.Decide(e)
		switch d.Variant() {
		case retry.NoRetry:
			return
		case retry.NoRetryWithError:
			x.fail(e, failure.Classify(d.Err()))
			return
		}

		m = e.LastMetrics()
		m.Retried = true
		m.Delay = d.Delay()
		x.handlers.run(BeforeRetryWait, e)
		if err := wait(p.Context(), d.Delay()); err != nil {
			x.cancel(e, err)
			return
		}

		e.Request = nil
		e.Response = nil
		e.Err = nil
		e.Body = nil
		e.Attempt++
	}
}

// attempt makes one request attempt. It returns false if the attempt
// failed before sending, during adaptation.
func (x *executor) attempt(ctx context.Context, e *request.Execution) bool {
	e.Metrics = append(e.Metrics, request.AttemptMetrics{
		Attempt: e.Attempt,
		Start:   time.Now(),
	})

	ctx, cancel := context.WithTimeout(ctx, x.timeout.Timeout(e))
	defer cancel()

	r, err := x.adapt(e.Plan.ToRequest(ctx))
	if err != nil {
		x.fail(e, failure.Wrap(failure.Initialization, err))
		return false
	}

	e.Request = r
	x.handlers.run(BeforeAttempt, e)
	e.Response, err = x.doer.Do(e.Request)
	if err != nil {
		x.fail(e, transportErr(err))
		return true
	}
	if e.Response == nil {
		panic("reqx: HTTPDoer returned nil response and nil error")
	}
	if e.Response.Body == nil {
		panic("reqx: HTTPDoer returned nil response body")
	}

	if x.readBody(e) {
		if err = x.validator.Validate(e); err != nil {
			x.fail(e, failure.Wrap(failure.Validation, err))
		}
	}
	return true
}

func (x *executor) adapt(r *http.Request) (*http.Request, error) {
	if x.authErr != nil {
		return nil, x.authErr
	}
	var err error
	if x.auth != nil {
		if r, err = x.auth.Authenticate(r); err != nil {
			return nil, err
		}
	}
	return intercept.Chain(r, x.interceptors...)
}

func (x *executor) readBody(e *request.Execution) bool {
	body := e.Response.Body
	defer func() {
		_ = body.Close()
	}()
	x.handlers.run(BeforeReadBody, e)
	if e.Response == nil {
		panic("reqx: attempt response was nilled")
	}
	if e.Response.Body == nil {
		panic("reqx: attempt response body was nilled")
	}
	body = e.Response.Body
	var err error
	e.Body, err = io.ReadAll(body)
	if err != nil {
		x.fail(e, transportErr(err))
		return false
	}
	return true
}

func (x *executor) cancel(e *request.Execution, err error) {
	reason := failure.Cancelled
	if err == context.DeadlineExceeded {
		reason = failure.PlanTimeout
	}
	x.fail(e, failure.New(failure.Cancellation, reason, err))
	if reason == failure.PlanTimeout {
		x.handlers.run(AfterPlanTimeout, e)
	}
}

// fail sets the execution error to a copy of err located at the plan's
// method and URL. The copy keeps errors shared between executions, such
// as a failed credential refresh, free of per-execution details.
func (x *executor) fail(e *request.Execution, err *failure.Error) {
	located := *err
	e.Err = located.At(e.Plan.Method, e.Plan.URL.String())
}

func transportErr(err error) *failure.Error {
	cat := transient.Categorize(err)
	if cat == transient.TLS {
		return &failure.Error{
			Kind:   failure.Validation,
			Reason: failure.TrustEvaluationFailed,
			Err:    err,
		}
	}
	fe := failure.Wrap(failure.Network, err)
	if cat != transient.Not && fe.Detail == "" {
		located := *fe
		located.Detail = cat.String()
		fe = &located
	}
	return fe
}

// wait waits for d to elapse, returning early with the context error if
// ctx is done first.
func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get issues a GET to url, using the same policies followed by Do.
// Options such as WithAuth adjust the plan before it runs.
func (c *Client) Get(url string, opts ...PlanOption) (*request.Execution, error) {
	return Get(c, url, opts...)
}

// Head issues a HEAD to url, using the same policies followed by Do.
func (c *Client) Head(url string, opts ...PlanOption) (*request.Execution, error) {
	return Head(c, url, opts...)
}

// Post issues a POST to url, using the same policies followed by Do.
// The body may be any type accepted by request.BodyBytes.
func (c *Client) Post(url, contentType string, body interface{}, opts ...PlanOption) (*request.Execution, error) {
	return Post(c, url, contentType, body, opts...)
}

// PostForm issues a POST of data's keys and values, URL-encoded, to
// url.
func (c *Client) PostForm(url string, data url.Values, opts ...PlanOption) (*request.Execution, error) {
	return PostForm(c, url, data, opts...)
}

// PostJSON issues a POST of v, encoded as JSON, to url.
func (c *Client) PostJSON(url string, v interface{}, opts ...PlanOption) (*request.Execution, error) {
	return PostJSON(c, url, v, opts...)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	doer := c.doer()
	if ic, ok := doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}

	return c.HTTPDoer
}
