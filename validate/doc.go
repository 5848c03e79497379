// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package validate decides whether a completed HTTP response counts as
// a success.
//
// The client runs its Validator after every attempt which produced a
// response, once the response body has been read. A rejected response
// fails the attempt with a failure.Validation error, which the retry
// policies then see alongside the response.
package validate
