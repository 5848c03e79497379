// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/reqx/request"
)

// A Waiter specifies how long to wait before retrying a failed HTTP request
// attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// A policy constructed with NewPolicy will not call its Waiter if its
// Decider returned false.
//
// This package provides three Waiter constructors: NewFixedWaiter,
// NewExpWaiter, and NewBackoffWaiter.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as retry waiters.
type WaiterFunc func(e *request.Execution) time.Duration

// Wait returns f(e).
func (f WaiterFunc) Wait(e *request.Execution) time.Duration {
	return f(e)
}

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
//
// Use NewFixedWaiter to obtain a constant retry backoff.
func NewFixedWaiter(d time.Duration) Waiter {
	if d < 0 {
		panic("reqx/retry: negative wait")
	}
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing a doubling exponential
// backoff formula with optional jitter. It is equivalent to
// NewBackoffWaiter(2, base, max, jitter).
//
// The formula implemented is the "Full Jitter" approach described in:
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	return NewBackoffWaiter(2, base, max, jitter)
}

// NewBackoffWaiter constructs a Waiter implementing an exponential
// backoff formula with optional jitter.
//
// Parameters factor, scale and ceiling control the exponential
// calculation of the ceiling for the current attempt:
//
//	ceil := min(scale * factor**attempt, ceiling)
//
// Factor must be at least 1, scale must be positive, and ceiling must
// be at least equal to scale. The calculation is done in floating
// point, so very large attempt numbers saturate at ceiling rather than
// overflowing.
//
// Parameter jitter is used to generate a random number between 0 and
// ceil. To make a waiter that does not jitter and simply returns
// ceil on each attempt, pass nil for jitter. Otherwise you may specify
// either a random number generator seed value (as a time.Time, int, or
// int64) or a random number generator (as a rand.Source). If a seed
// value is specified, it is used to seed a random number generator
// for calculating jitter. If a rand.Source is specified, it is used to
// calculate jitter.
func NewBackoffWaiter(factor float64, scale, ceiling time.Duration, jitter interface{}) Waiter {
	if math.IsNaN(factor) || factor < 1 {
		panic("reqx/retry: factor must be at least 1")
	}
	if scale < 1 {
		panic("reqx/retry: scale must be positive")
	}
	if ceiling < scale {
		panic("reqx/retry: ceiling must be at least scale")
	}
	r := jitterToRand(jitter)
	return &jitterExpWaiter{
		factor:  factor,
		scale:   scale,
		ceiling: ceiling,
		rand:    r,
	}
}

type jitterExpWaiter struct {
	factor  float64
	scale   time.Duration
	ceiling time.Duration
	rand    *rand.Rand
	lock    sync.Mutex
}

func (w *jitterExpWaiter) Wait(e *request.Execution) time.Duration {
	ceil := backoff(w.factor, w.scale, w.ceiling, e.Attempt)
	if ceil <= 0 || w.rand == nil {
		return ceil
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	return time.Duration(w.rand.Int63n(int64(ceil)))
}

// backoff returns min(scale * factor**n, ceiling). Negative n is
// treated as zero.
func backoff(factor float64, scale, ceiling time.Duration, n int) time.Duration {
	if n < 0 {
		n = 0
	}
	d := float64(scale) * math.Pow(factor, float64(n))
	if math.IsInf(d, 0) || math.IsNaN(d) || d >= float64(ceiling) {
		return ceiling
	}
	return time.Duration(d)
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("reqx/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("reqx/retry: invalid jitter type")
	}
	return rand.New(s)
}
