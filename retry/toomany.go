// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/reqx/request"
)

// DefaultMaxRetryAfter is the longest Retry-After wait honored by
// default.
const DefaultMaxRetryAfter = 30 * time.Second

const maxDelay = time.Duration(math.MaxInt64)

// A Fallback decides what to do about a 429 response which has no
// usable Retry-After header. Use FallbackExponential or FallbackNever.
type Fallback func(e *request.Execution) Decision

// FallbackNever is the fallback which never retries.
var FallbackNever Fallback = func(_ *request.Execution) Decision {
	return No()
}

// FallbackExponential returns a fallback which retries after an
// exponential delay of base**n * scale, where n counts the failed
// attempts so far including the one being evaluated (e.Attempt+1). The
// delay is capped at DefaultCeiling.
//
// FallbackExponential panics if base is less than 2 or scale is not
// positive.
func FallbackExponential(base float64, scale time.Duration) Fallback {
	if !(base >= 2) {
		panic("reqx/retry: base must be at least 2")
	}
	if scale <= 0 {
		panic("reqx/retry: scale must be positive")
	}
	return func(e *request.Execution) Decision {
		return After(backoff(base, scale, DefaultCeiling, e.Attempt+1))
	}
}

// TooManyRequestsConfig configures a retry policy for responses with
// status 429 (Too Many Requests).
type TooManyRequestsConfig struct {
	// Limit is the maximum number of retries.
	Limit int
	// MaxRetryAfter is the longest Retry-After value honored. A
	// response asking for a longer wait is not retried. Zero means
	// DefaultMaxRetryAfter.
	MaxRetryAfter time.Duration
	// Fallback decides when there is no usable Retry-After header. Nil
	// means FallbackNever.
	Fallback Fallback
}

// DefaultTooManyRequestsConfig is the configuration of the
// too-many-requests policy used by DefaultPolicy.
var DefaultTooManyRequestsConfig = TooManyRequestsConfig{
	Limit:         DefaultLimit,
	MaxRetryAfter: DefaultMaxRetryAfter,
	Fallback:      FallbackExponential(DefaultBase, DefaultScale),
}

type tooManyRequests struct {
	limit    int
	max      time.Duration
	fallback Fallback
}

// NewTooManyRequests constructs a retry policy for 429 responses.
//
// The policy decides No if e.Attempt has reached cfg.Limit or the
// response status is not 429. If the response carries a Retry-After
// header in integer seconds form, the policy retries after that many
// seconds, unless the value exceeds cfg.MaxRetryAfter, in which case it
// decides No. The HTTP-date form of Retry-After is treated as absent.
// When the header is absent or unusable, cfg.Fallback decides.
func NewTooManyRequests(cfg TooManyRequestsConfig) Policy {
	if cfg.Limit < 0 {
		panic("reqx/retry: negative limit")
	}
	if cfg.MaxRetryAfter < 0 {
		panic("reqx/retry: negative max retry-after")
	}
	p := &tooManyRequests{
		limit:    cfg.Limit,
		max:      cfg.MaxRetryAfter,
		fallback: cfg.Fallback,
	}
	if p.max == 0 {
		p.max = DefaultMaxRetryAfter
	}
	if p.fallback == nil {
		p.fallback = FallbackNever
	}
	return p
}

func (p *tooManyRequests) Decide(e *request.Execution) Decision {
	if e.Attempt >= p.limit || e.StatusCode() != http.StatusTooManyRequests {
		return No()
	}
	if d, ok := RetryAfter(e.Header()); ok {
		if d > p.max {
			return No()
		}
		return After(d)
	}
	return p.fallback(e)
}

// RetryAfter parses the Retry-After header in h. It returns the delay
// and true if the header holds a non-negative integer number of seconds,
// and false otherwise.
func RetryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return maxDelay, true
		}
		return 0, false
	}
	if secs > uint64(maxDelay/time.Second) {
		return maxDelay, true
	}
	return time.Duration(secs) * time.Second, true
}
