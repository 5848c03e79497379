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

const (
	// DefaultLimit is the default number of retries allowed by the
	// built-in policies.
	DefaultLimit = 2
	// DefaultBase is the default exponential backoff base.
	DefaultBase = 2.0
	// DefaultScale is the default exponential backoff scale, which is
	// the delay before the first retry.
	DefaultScale = 500 * time.Millisecond
	// DefaultCeiling is the default upper bound on any exponential
	// backoff delay.
	DefaultCeiling = time.Hour
)

// DefaultMethods are the HTTP methods retried by default. They are the
// methods RFC 7231 defines as idempotent. POST and PATCH are excluded
// because repeating them may duplicate side effects.
var DefaultMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPut,
	http.MethodTrace,
}

// DefaultStatusCodes are the HTTP response status codes retried by
// default.
var DefaultStatusCodes = []int{
	http.StatusRequestTimeout,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// DefaultCategories are the transport error categories retried by
// default. TLS failures are excluded since a certificate which failed
// verification will fail it again.
var DefaultCategories = []transient.Category{
	transient.Timeout,
	transient.ConnRefused,
	transient.ConnLost,
	transient.DNS,
	transient.Unreachable,
}

// ExponentialConfig configures an exponential backoff retry policy.
type ExponentialConfig struct {
	// Limit is the maximum number of retries.
	Limit int
	// Base is the exponential backoff base. It must be at least 2.
	Base float64
	// Scale is the delay before the first retry. It must be positive.
	Scale time.Duration
	// Ceiling caps the delay. Zero means DefaultCeiling.
	Ceiling time.Duration
	// Methods lists the retryable HTTP methods.
	Methods []string
	// StatusCodes lists the retryable response status codes.
	StatusCodes []int
	// Categories lists the retryable transport error categories.
	Categories []transient.Category
}

// DefaultExponentialConfig is the configuration of the exponential
// backoff policy used by DefaultPolicy.
var DefaultExponentialConfig = ExponentialConfig{
	Limit:       DefaultLimit,
	Base:        DefaultBase,
	Scale:       DefaultScale,
	Ceiling:     DefaultCeiling,
	Methods:     DefaultMethods,
	StatusCodes: DefaultStatusCodes,
	Categories:  DefaultCategories,
}

// Delay returns the backoff delay before retry number n (zero-based):
// min(Base**n * Scale, Ceiling).
func (cfg ExponentialConfig) Delay(n int) time.Duration {
	return backoff(cfg.Base, cfg.Scale, cfg.ceiling(), n)
}

func (cfg ExponentialConfig) ceiling() time.Duration {
	if cfg.Ceiling == 0 {
		return DefaultCeiling
	}
	return cfg.Ceiling
}

func (cfg ExponentialConfig) validate() {
	if cfg.Limit < 0 {
		panic("reqx/retry: negative limit")
	}
	if !(cfg.Base >= 2) {
		panic("reqx/retry: base must be at least 2")
	}
	if cfg.Scale <= 0 {
		panic("reqx/retry: scale must be positive")
	}
	if cfg.ceiling() < cfg.Scale {
		panic("reqx/retry: ceiling must be at least scale")
	}
}

// NewExponential constructs an exponential backoff retry policy.
//
// The policy decides No if e.Attempt has reached cfg.Limit, or if the
// request method is not one of cfg.Methods. Otherwise it retries after
// cfg.Delay(e.Attempt) if the response status code is one of
// cfg.StatusCodes or the error falls into one of cfg.Categories, and
// decides No for any other failure.
//
// NewExponential panics if cfg.Base is less than 2, cfg.Scale is not
// positive, cfg.Limit is negative, or cfg.Ceiling is less than
// cfg.Scale.
func NewExponential(cfg ExponentialConfig) Policy {
	cfg.validate()
	d := Times(cfg.Limit).
		And(Methods(cfg.Methods...)).
		And(StatusCode(cfg.StatusCodes...).Or(Category(cfg.Categories...)))
	w := WaiterFunc(func(e *request.Execution) time.Duration {
		return cfg.Delay(e.Attempt)
	})
	return NewPolicy(d, w)
}

// NewConnectionLost constructs a retry policy which only retries
// attempts whose connection was lost mid-request (transient.ConnLost),
// ignoring status codes entirely. Retries use the default exponential
// backoff delays, up to limit retries, for the given methods. If no
// methods are given, DefaultMethods are used.
func NewConnectionLost(limit int, methods ...string) Policy {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	return NewExponential(ExponentialConfig{
		Limit:      limit,
		Base:       DefaultBase,
		Scale:      DefaultScale,
		Ceiling:    DefaultCeiling,
		Methods:    methods,
		Categories: []transient.Category{transient.ConnLost},
	})
}
