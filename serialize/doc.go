// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package serialize turns the response of a successful execution into
// a typed value.
//
// Serialization runs after the client has finished an execution, on
// the caller's side: it is never retried. Decode wraps any error in a
// failure.Serialization error.
//
// Responses which legitimately carry no body, such as 204 (No Content)
// or the response to a HEAD request, follow the empty response
// convention: a type implementing Emptier supplies its own empty value,
// and otherwise the serializer either returns the zero value (if it
// allows empty bodies) or fails with reason EmptyResponse.
package serialize
