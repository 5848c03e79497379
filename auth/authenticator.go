// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"time"

	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
)

// An Authenticator stamps credentials onto request attempts for plans
// carrying the descriptor it serves.
//
// Authenticate is called before every attempt, including retries, with
// the attempt's request. It may change r in place and return it, or
// return a different request. The context of r bounds any wait for a
// credential. Authenticate returns a failure.Authentication error when
// no credential can be obtained.
//
// An Authenticator which also implements retry.Policy is consulted
// after failed attempts, following the client's retry policies.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Authenticator interface {
	Descriptor() request.AuthDescriptor
	Authenticate(r *http.Request) (*http.Request, error)
}

// Lookup returns the first authenticator in as serving d. If none does,
// it returns a failure.Authentication error with reason
// MissingAuthenticator.
func Lookup(as []Authenticator, d request.AuthDescriptor) (Authenticator, error) {
	for _, a := range as {
		if a != nil && a.Descriptor() == d {
			return a, nil
		}
	}
	return nil, &failure.Error{
		Kind:   failure.Authentication,
		Reason: failure.MissingAuthenticator,
		Detail: d.String(),
	}
}

var now = time.Now

type noAuth request.AuthDescriptor

// NoAuth returns an authenticator for d which passes requests through
// unchanged. Use it as the last stage of a chain to fall back to
// sending requests without authentication.
func NoAuth(d request.AuthDescriptor) Authenticator {
	return noAuth(d)
}

func (a noAuth) Descriptor() request.AuthDescriptor {
	return request.AuthDescriptor(a)
}

func (a noAuth) Authenticate(r *http.Request) (*http.Request, error) {
	return r, nil
}

type static struct {
	d    request.AuthDescriptor
	cred Credential
}

// NewStatic returns an authenticator for d which stamps the fixed
// credential cred. It has no refresh path: if cred has no token, or has
// expired, Authenticate fails with reason MissingCredential.
func NewStatic(d request.AuthDescriptor, cred Credential) Authenticator {
	return &static{d: d, cred: cred}
}

// NewBasic returns an authenticator for d which stamps HTTP Basic
// credentials built from username and password.
func NewBasic(d request.AuthDescriptor, username, password string) Authenticator {
	return NewStatic(d, Credential{Scheme: "Basic", Token: request.BasicAuth(username, password)})
}

func (a *static) Descriptor() request.AuthDescriptor {
	return a.d
}

func (a *static) Authenticate(r *http.Request) (*http.Request, error) {
	if !a.cred.Valid(now(), 0) {
		return nil, failure.New(failure.Authentication, failure.MissingCredential, nil)
	}
	a.cred.Apply(r)
	return r, nil
}

// DefaultUnauthorizedRetries is the number of times a Cached
// authenticator retries a request rejected with status 401.
const DefaultUnauthorizedRetries = 1

// Cached is an authenticator which stamps credentials held in a Cache,
// refreshing them as needed.
//
// Cached is also a retry policy: when an attempt it authenticated is
// rejected with status 401 (Unauthorized), it invalidates the rejected
// credential and decides to retry immediately, so the retry is stamped
// with a refreshed credential. A 401 on a token the cache never held,
// such as one stamped by another stage of a chain, is not retried.
// Re-authentication retries are counted per execution, separately from
// retries for other reasons. The cache's excessive-refresh guard stops
// a server which rejects every credential from causing a refresh loop.
type Cached struct {
	d       request.AuthDescriptor
	cache   *Cache
	retries int
}

// NewCached returns an authenticator for d backed by cache.
func NewCached(d request.AuthDescriptor, cache *Cache) *Cached {
	if cache == nil {
		panic("reqx/auth: nil cache")
	}
	return &Cached{d: d, cache: cache, retries: DefaultUnauthorizedRetries}
}

// Descriptor returns the descriptor served.
func (a *Cached) Descriptor() request.AuthDescriptor {
	return a.d
}

// Authenticate stamps the cached credential onto r, waiting for a
// refresh if there is no valid credential.
func (a *Cached) Authenticate(r *http.Request) (*http.Request, error) {
	cred, err := a.cache.Get(r.Context(), a.d)
	if err != nil {
		return nil, err
	}
	cred.Apply(r)
	return r, nil
}

type reauthKey struct {
	a *Cached
}

// Decide implements retry.Policy.
func (a *Cached) Decide(e *request.Execution) retry.Decision {
	if e.StatusCode() != http.StatusUnauthorized {
		return retry.No()
	}
	n, _ := e.Value(reauthKey{a}).(int)
	if n >= a.retries {
		return retry.No()
	}
	token := Stamped(e.Request)
	if token == "" {
		return retry.No()
	}
	if !a.cache.InvalidateIf(a.d, token) && !a.cache.retired(a.d, token) {
		return retry.No()
	}
	e.SetValue(reauthKey{a}, n+1)
	return retry.Now()
}

// A Trigger decides whether an authentication error returned by one
// stage of a chain lets the chain fall through to its next stage.
type Trigger func(err error) bool

// FallbackOnMissingCredential falls through only when the stage had no
// credential. Other authentication failures, such as a failed refresh,
// end the chain.
func FallbackOnMissingCredential(err error) bool {
	return failure.ReasonOf(err) == failure.MissingCredential
}

// FallbackOnAnyAuthError falls through on any authentication failure.
func FallbackOnAnyAuthError(err error) bool {
	return failure.Has(err, failure.Authentication)
}

type chain struct {
	d       request.AuthDescriptor
	trigger Trigger
	stages  []Authenticator
}

// NewChain returns an authenticator for d which tries the stages as in
// order. When a stage fails with an error accepted by trigger, the next
// stage is tried; any other error ends the chain. If every stage falls
// through, the last stage's error is returned. A nil trigger means
// FallbackOnMissingCredential.
//
// End the chain with NoAuth to send the request unauthenticated when
// no stage has a credential:
//
//	a := auth.NewChain(request.PrimaryWithNoAuthFallback, nil,
//		primary, auth.NoAuth(request.NoAuth))
//
// The descriptors of the stages are not consulted. The chain is also a
// retry policy, consulting those stages which are retry policies, in
// order.
func NewChain(d request.AuthDescriptor, trigger Trigger, as ...Authenticator) Authenticator {
	if len(as) == 0 {
		panic("reqx/auth: empty chain")
	}
	if trigger == nil {
		trigger = FallbackOnMissingCredential
	}
	stages := make([]Authenticator, len(as))
	copy(stages, as)
	return &chain{d: d, trigger: trigger, stages: stages}
}

func (c *chain) Descriptor() request.AuthDescriptor {
	return c.d
}

func (c *chain) Authenticate(r *http.Request) (*http.Request, error) {
	var err error
	for _, a := range c.stages {
		var r2 *http.Request
		r2, err = a.Authenticate(r)
		if err == nil {
			return r2, nil
		}
		if !c.trigger(err) {
			return nil, err
		}
	}
	return nil, err
}

func (c *chain) Decide(e *request.Execution) retry.Decision {
	for _, a := range c.stages {
		if p, ok := a.(retry.Policy); ok {
			if d := p.Decide(e); d.Variant() != retry.NoRetry {
				return d
			}
		}
	}
	return retry.No()
}
