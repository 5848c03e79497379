// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"fmt"
	"time"
)

// A Variant identifies which of the four possible outcomes a Decision
// holds.
type Variant int

const (
	// NoRetry means the failed attempt should not be retried. The
	// execution fails with the most recent error.
	NoRetry Variant = iota
	// RetryNow means the failed attempt should be retried immediately.
	RetryNow
	// RetryAfterDelay means the failed attempt should be retried after
	// waiting for the decision's delay.
	RetryAfterDelay
	// NoRetryWithError means the failed attempt should not be retried,
	// and the execution should fail with the decision's error instead
	// of the most recent error.
	NoRetryWithError
)

var variantNames = []string{
	NoRetry:          "no retry",
	RetryNow:         "retry now",
	RetryAfterDelay:  "retry after delay",
	NoRetryWithError: "no retry with error",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variantNames[v]
}

// A Decision is the outcome of consulting a retry Policy about a failed
// attempt. Exactly one Variant holds per decision.
//
// The zero value is equivalent to No().
type Decision struct {
	variant Variant
	delay   time.Duration
	err     error
}

// Now returns a decision to retry immediately.
func Now() Decision {
	return Decision{variant: RetryNow}
}

// After returns a decision to retry after waiting d. After panics if d
// is negative.
func After(d time.Duration) Decision {
	if d < 0 {
		panic("reqx/retry: negative delay")
	}
	return Decision{variant: RetryAfterDelay, delay: d}
}

// No returns a decision not to retry.
func No() Decision {
	return Decision{}
}

// NoWithError returns a decision not to retry which replaces the most
// recent error with err. If err is nil, NoWithError is equivalent to
// No.
func NoWithError(err error) Decision {
	if err == nil {
		return Decision{}
	}
	return Decision{variant: NoRetryWithError, err: err}
}

// Variant returns the outcome held by the decision.
func (d Decision) Variant() Variant {
	return d.variant
}

// Retry reports whether the decision is to retry, either now or after a
// delay.
func (d Decision) Retry() bool {
	return d.variant == RetryNow || d.variant == RetryAfterDelay
}

// Delay returns the time to wait before retrying. It is zero unless the
// variant is RetryAfterDelay.
func (d Decision) Delay() time.Duration {
	return d.delay
}

// Err returns the replacement error of a NoRetryWithError decision, and
// nil otherwise.
func (d Decision) Err() error {
	return d.err
}

func (d Decision) String() string {
	switch d.variant {
	case RetryAfterDelay:
		return fmt.Sprintf("%s %s", d.variant, d.delay)
	case NoRetryWithError:
		return fmt.Sprintf("%s: %v", d.variant, d.err)
	default:
		return d.variant.String()
	}
}
