// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package serialize

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"
)

// A Serializer converts the final state of a successful execution into
// a value of type T.
type Serializer[T any] interface {
	Serialize(e *request.Execution) (T, error)
}

// The Func type is an adapter to allow the use of ordinary functions as
// serializers.
type Func[T any] func(e *request.Execution) (T, error)

// Serialize returns f(e).
func (f Func[T]) Serialize(e *request.Execution) (T, error) {
	return f(e)
}

// An Emptier is a type with a designated value standing for an empty
// response body. EmptyValue is called on the zero value of the type.
type Emptier[T any] interface {
	EmptyValue() T
}

// EmptyResponseCodes are the status codes whose responses are expected
// to have an empty body.
var EmptyResponseCodes = []int{http.StatusNoContent, http.StatusResetContent}

// Decode serializes the outcome of an execution. If err, the error
// returned by the execution, is non-nil, Decode returns it unchanged.
// Otherwise it runs s, wrapping any error which is not already a
// *failure.Error as a failure.Serialization error.
func Decode[T any](e *request.Execution, err error, s Serializer[T]) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	v, err := s.Serialize(e)
	if err != nil {
		if fe, ok := err.(*failure.Error); ok {
			return zero, fe
		}
		return zero, &failure.Error{
			Kind:       failure.Serialization,
			Reason:     failure.DecodingFailed,
			StatusCode: e.StatusCode(),
			Err:        err,
		}
	}
	return v, nil
}

// JSON decodes the response body as JSON into a T.
type JSON[T any] struct {
	// AllowEmpty makes an empty body decode to the zero value of T
	// rather than failing, whatever the status code.
	AllowEmpty bool
	// DisallowUnknownFields rejects objects with keys which do not
	// match any field of the destination.
	DisallowUnknownFields bool
}

// Serialize implements Serializer.
func (j JSON[T]) Serialize(e *request.Execution) (T, error) {
	if len(e.Body) == 0 {
		return Empty[T](e, j.AllowEmpty)
	}
	var v T
	dec := json.NewDecoder(bytes.NewReader(e.Body))
	if j.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		return v, &failure.Error{
			Kind:       failure.Serialization,
			Reason:     failure.DecodingFailed,
			StatusCode: e.StatusCode(),
			Err:        err,
		}
	}
	return v, nil
}

// Bytes returns the response body as is. An empty body is always
// allowed.
var Bytes Serializer[[]byte] = Func[[]byte](func(e *request.Execution) ([]byte, error) {
	return e.Body, nil
})

// String returns the response body as a string. An empty body is
// always allowed.
var String Serializer[string] = Func[string](func(e *request.Execution) (string, error) {
	return string(e.Body), nil
})

// Empty implements the empty response convention for serializers of T
// faced with an empty body.
//
// If the response status is one of EmptyResponseCodes, or the request
// method is HEAD, an empty body is expected: Empty returns the
// EmptyValue of T if T or *T is an Emptier, and the zero value
// otherwise. For any other response, Empty returns the zero value if
// allow is true, and a failure.Serialization error with reason
// EmptyResponse if not.
func Empty[T any](e *request.Execution, allow bool) (T, error) {
	var zero T
	if expectEmpty(e) {
		if em, ok := any(zero).(Emptier[T]); ok {
			return em.EmptyValue(), nil
		}
		if em, ok := any(&zero).(Emptier[T]); ok {
			return em.EmptyValue(), nil
		}
		return zero, nil
	}
	if allow {
		return zero, nil
	}
	return zero, &failure.Error{
		Kind:       failure.Serialization,
		Reason:     failure.EmptyResponse,
		StatusCode: e.StatusCode(),
	}
}

func expectEmpty(e *request.Execution) bool {
	sc := e.StatusCode()
	for _, c := range EmptyResponseCodes {
		if sc == c {
			return true
		}
	}
	method := ""
	if e.Request != nil {
		method = e.Request.Method
	} else if e.Plan != nil {
		method = e.Plan.Method
	}
	return method == http.MethodHead
}
