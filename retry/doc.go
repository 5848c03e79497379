// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides flexible policies for retrying failed attempts
// during an HTTP request plan execution, and how long to wait before
// retrying.
//
// After an attempt fails, the client consults its retry policies. Each
// Policy returns a Decision: retry now, retry after a delay, do not
// retry, or do not retry and fail with a replacement error. Policies
// composed with Chain are consulted in order, and the first decision
// other than No wins.
//
// The built-in policies cover the common cases. NewExponential retries
// idempotent requests failing with a retryable status code or transient
// error, with exponential backoff. NewConnectionLost retries only
// requests whose connection was lost. NewTooManyRequests honors the
// Retry-After header of 429 responses. DefaultPolicy chains the
// exponential and too-many-requests policies with default settings.
//
// A custom policy can be constructed using NewPolicy by providing a
// decision-maker, Decider, and a wait time calculator, Waiter:
//
//	decider := retry.Times(3).
//		And(retry.Before(5 * time.Second)).
//		And(retry.StatusCode(500).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	policy := retry.NewPolicy(decider, waiter)
//
// If the built-in functionality is insufficient, fully custom retry
// policies can be created via custom implementations of Decider,
// Waiter, or Policy.
package retry
