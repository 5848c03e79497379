// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http/httpguts"
)

// DefaultRequestIDHeader is the header set by RequestID when no header
// name is given.
const DefaultRequestIDHeader = "X-Request-Id"

// SetHeader returns an interceptor which sets header name to value on
// every attempt, replacing any existing values. It never retries.
//
// SetHeader panics if name or value is not a valid header field name or
// value.
func SetHeader(name, value string) Interceptor {
	if !httpguts.ValidHeaderFieldName(name) {
		panic(fmt.Sprintf("reqx/intercept: invalid header field name %q", name))
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		panic(fmt.Sprintf("reqx/intercept: invalid header field value for %q", name))
	}
	return New(AdapterFunc(func(r *http.Request) (*http.Request, error) {
		r.Header.Set(name, value)
		return r, nil
	}), nil)
}

type requestIDKey struct {
	header string
}

// RequestID returns an interceptor which tags every attempt with a
// request ID header. A header already present on the plan is kept.
// Otherwise a random (version 4) UUID is generated on the first attempt
// and reused on every retry of the same execution, so the server can
// recognize retries. An empty header means DefaultRequestIDHeader. It
// never retries.
func RequestID(header string) Interceptor {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	header = http.CanonicalHeaderKey(header)
	key := requestIDKey{header}
	return New(AdapterFunc(func(r *http.Request) (*http.Request, error) {
		if r.Header.Get(header) != "" {
			return r, nil
		}
		e := execution(r)
		if e != nil {
			if id, ok := e.Value(key).(string); ok {
				r.Header.Set(header, id)
				return r, nil
			}
		}
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, err
		}
		if e != nil {
			e.SetValue(key, id.String())
		}
		r.Header.Set(header, id.String())
		return r, nil
	}), nil)
}

// TraceContext returns an interceptor which injects the trace context
// of each attempt's request context into its headers using p, for
// example as a W3C traceparent header. A nil p means the global
// OpenTelemetry propagator, as returned by otel.GetTextMapPropagator at
// the time of each attempt. It never retries.
func TraceContext(p propagation.TextMapPropagator) Interceptor {
	return New(AdapterFunc(func(r *http.Request) (*http.Request, error) {
		prop := p
		if prop == nil {
			prop = otel.GetTextMapPropagator()
		}
		prop.Inject(r.Context(), propagation.HeaderCarrier(r.Header))
		return r, nil
	}), nil)
}
