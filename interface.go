// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/serialize"
)

// Doer executes request plans. Client implements Doer, as may wrappers
// and test doubles standing in for a Client.
//
// Do returns the final execution state and the execution's error, if
// any. Unless the plan could not be started at all, the execution is
// non-nil even when the error is non-nil.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// IdleCloser is implemented by HTTP doers, such as *http.Client, which
// can close idle keep-alive connections.
type IdleCloser interface {
	CloseIdleConnections()
}

// A PlanOption adjusts a request plan built by one of the helpers Get,
// Head, Post, PostForm, and PostJSON before the plan is executed.
type PlanOption func(p *request.Plan) (*request.Plan, error)

// WithAuth sets the plan's authentication descriptor, so each attempt
// is stamped by the client's authenticator serving d.
func WithAuth(d request.AuthDescriptor) PlanOption {
	return func(p *request.Plan) (*request.Plan, error) {
		return p.WithAuth(d), nil
	}
}

// WithContext sets the plan's context, which bounds the whole
// execution including retry waits.
func WithContext(ctx context.Context) PlanOption {
	return func(p *request.Plan) (*request.Plan, error) {
		return p.WithContext(ctx), nil
	}
}

// WithHeader sets the header field name to value on the plan. The
// option fails the helper if name or value is not a valid header field.
func WithHeader(name, value string) PlanOption {
	return func(p *request.Plan) (*request.Plan, error) {
		if err := p.SetHeader(name, value); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func plan(method, url string, body interface{}, opts []PlanOption) (*request.Plan, error) {
	p, err := request.NewPlan(method, url, body)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if p, err = opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Get uses d to issue a GET to url.
func Get(d Doer, url string, opts ...PlanOption) (*request.Execution, error) {
	p, err := plan("GET", url, nil, opts)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Head uses d to issue a HEAD to url.
func Head(d Doer, url string, opts ...PlanOption) (*request.Execution, error) {
	p, err := plan("HEAD", url, nil, opts)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Post uses d to issue a POST to url with the given content type.
//
// The body may be any type accepted by request.BodyBytes. It is
// buffered before the first attempt so that retries resend it whole.
func Post(d Doer, url, contentType string, body interface{}, opts ...PlanOption) (*request.Execution, error) {
	p, err := plan("POST", url, body, opts)
	if err != nil {
		return nil, err
	}
	p.Header.Set("Content-Type", contentType)
	return d.Do(p)
}

// PostForm uses d to POST data, URL-encoded, to url.
func PostForm(d Doer, url string, data url.Values, opts ...PlanOption) (*request.Execution, error) {
	return Post(d, url, "application/x-www-form-urlencoded", data, opts...)
}

// PostJSON uses d to POST v, encoded as JSON, to url.
func PostJSON(d Doer, url string, v interface{}, opts ...PlanOption) (*request.Execution, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Post(d, url, "application/json", b, opts...)
}

// Fetch executes p using d and serializes the outcome with s, as
// described by serialize.Decode. The final execution is returned
// alongside the value so callers can inspect headers and metrics.
func Fetch[T any](d Doer, p *request.Plan, s serialize.Serializer[T]) (T, *request.Execution, error) {
	e, err := d.Do(p)
	v, err := serialize.Decode(e, err, s)
	return v, e, err
}
