// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package validate

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"
)

// A Validator decides whether the response of the execution's most
// recent attempt is acceptable. It returns nil to accept the response,
// and a failure.Validation error to reject it.
//
// When a Validator is called, e.Response is non-nil and e.Body holds
// the complete response body.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Validator interface {
	Validate(e *request.Execution) error
}

// The Func type is an adapter to allow the use of ordinary functions as
// validators.
type Func func(e *request.Execution) error

// Validate returns f(e).
func (f Func) Validate(e *request.Execution) error {
	return f(e)
}

// Default accepts responses with a 2xx status code.
var Default = StatusRange(200, 299)

// None accepts every response.
var None Validator = Func(func(_ *request.Execution) error {
	return nil
})

// StatusRange accepts responses whose status code is between lo and hi,
// inclusive.
func StatusRange(lo, hi int) Validator {
	if lo > hi {
		panic("reqx/validate: empty status range")
	}
	return Func(func(e *request.Execution) error {
		if sc := e.StatusCode(); sc < lo || sc > hi {
			return statusErr(sc)
		}
		return nil
	})
}

// StatusCodes accepts responses whose status code is one of codes.
func StatusCodes(codes ...int) Validator {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return Func(func(e *request.Execution) error {
		if sc := e.StatusCode(); !set[sc] {
			return statusErr(sc)
		}
		return nil
	})
}

// ContentType accepts responses whose Content-Type media type matches
// one of types. A type may be a wildcard, "*/*" or for example
// "text/*". Media type parameters such as charset are ignored.
//
// A response with an empty body needs no content type. A response with
// a non-empty body and no Content-Type header is rejected with reason
// MissingContentType.
func ContentType(types ...string) Validator {
	accepted := make([]string, len(types))
	for i, t := range types {
		accepted[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return Func(func(e *request.Execution) error {
		v := e.Header().Get("Content-Type")
		if v == "" {
			if len(e.Body) == 0 {
				return nil
			}
			return &failure.Error{
				Kind:       failure.Validation,
				Reason:     failure.MissingContentType,
				StatusCode: e.StatusCode(),
			}
		}
		mt, _, err := mime.ParseMediaType(v)
		if err != nil {
			return &failure.Error{
				Kind:       failure.Validation,
				Reason:     failure.UnacceptableContentType,
				StatusCode: e.StatusCode(),
				Detail:     v,
				Err:        err,
			}
		}
		for _, a := range accepted {
			if matchMediaType(a, mt) {
				return nil
			}
		}
		return &failure.Error{
			Kind:       failure.Validation,
			Reason:     failure.UnacceptableContentType,
			StatusCode: e.StatusCode(),
			Detail:     mt,
		}
	})
}

// RequiredHeaders accepts responses carrying every one of the named
// headers.
func RequiredHeaders(names ...string) Validator {
	canonical := make([]string, len(names))
	for i, n := range names {
		canonical[i] = http.CanonicalHeaderKey(n)
	}
	return Func(func(e *request.Execution) error {
		h := e.Header()
		for _, n := range canonical {
			if len(h.Values(n)) == 0 {
				return &failure.Error{
					Kind:       failure.Validation,
					Reason:     failure.MissingHeader,
					StatusCode: e.StatusCode(),
					Detail:     n,
				}
			}
		}
		return nil
	})
}

// All accepts responses accepted by every one of vs, consulted in
// order. The first rejection is returned.
func All(vs ...Validator) Validator {
	vs2 := make([]Validator, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			vs2 = append(vs2, v)
		}
	}
	return Func(func(e *request.Execution) error {
		for _, v := range vs2 {
			if err := v.Validate(e); err != nil {
				return err
			}
		}
		return nil
	})
}

func statusErr(sc int) error {
	return &failure.Error{
		Kind:       failure.Validation,
		Reason:     failure.UnacceptableStatusCode,
		StatusCode: sc,
	}
}

func matchMediaType(pattern, mt string) bool {
	if pattern == "*/*" || pattern == mt {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(mt, pattern[:len(pattern)-1])
	}
	return false
}
