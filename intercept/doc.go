// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package intercept provides interceptors, pluggable units which adapt
// each outgoing request attempt and take part in retry decisions.
//
// An Interceptor combines an Adapter, run before every attempt after
// the plan's authenticator, with a retry.Policy, consulted after every
// failed attempt following the client's own retry policies and the
// authenticator. Use New to build one from parts, and Compose to nest
// several adapters into one.
//
// An adapter error aborts the execution with a failure.Initialization
// error. Adaptation is not retried.
package intercept
