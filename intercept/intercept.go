// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"net/http"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
)

// An Adapter changes an attempt's request before it is sent, for
// example to add a header or sign the request.
//
// Adapt may change r in place and return it, or return a different
// request. Every attempt's request is a fresh copy built from the plan,
// so changes never leak into the plan or into later attempts.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Adapter interface {
	Adapt(r *http.Request) (*http.Request, error)
}

// The AdapterFunc type is an adapter to allow the use of ordinary
// functions as request adapters.
type AdapterFunc func(r *http.Request) (*http.Request, error)

// Adapt returns f(r).
func (f AdapterFunc) Adapt(r *http.Request) (*http.Request, error) {
	return f(r)
}

// An Interceptor adapts requests before they are sent and decides
// about retrying them after they fail.
type Interceptor interface {
	Adapter
	retry.Policy
}

// PassThrough is an adapter which returns the request unchanged.
var PassThrough Adapter = AdapterFunc(func(r *http.Request) (*http.Request, error) {
	return r, nil
})

type interceptor struct {
	Adapter
	retry.Policy
}

// New builds an interceptor from an adapter and a retry policy. A nil
// adapter becomes PassThrough, and a nil policy becomes retry.Never.
func New(a Adapter, p retry.Policy) Interceptor {
	if a == nil {
		a = PassThrough
	}
	if p == nil {
		p = retry.Never
	}
	return interceptor{Adapter: a, Policy: p}
}

type composed []Adapter

// Compose returns an adapter running as in order, each receiving the
// request returned by the previous one. The first error stops the
// sequence and is returned. Nil adapters are skipped.
func Compose(as ...Adapter) Adapter {
	c := make(composed, 0, len(as))
	for _, a := range as {
		if a != nil {
			c = append(c, a)
		}
	}
	return c
}

func (c composed) Adapt(r *http.Request) (*http.Request, error) {
	var err error
	for _, a := range c {
		if r, err = a.Adapt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Chain runs the adapters of the interceptors in is, in order, as
// Compose does, and returns the first error.
func Chain(r *http.Request, is ...Interceptor) (*http.Request, error) {
	var err error
	for _, i := range is {
		if r, err = i.Adapt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Policies returns the retry policies of is, in order, for use with
// retry.Chain.
func Policies(is ...Interceptor) []retry.Policy {
	ps := make([]retry.Policy, len(is))
	for i := range is {
		ps[i] = is[i]
	}
	return ps
}

// execution returns the execution carried by the context of r.
func execution(r *http.Request) *request.Execution {
	e, _ := request.FromContext(r.Context())
	return e
}
