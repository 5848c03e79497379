// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package failure defines the closed error taxonomy used throughout reqx.

Every error reported by a reqx Client, and every error produced by the
authentication, validation, and serialization packages, is a *Error
whose Kind places it in exactly one of the following classes:

	Initialization  adaptation or request construction failed; nothing was sent
	Network         the transport failed (timeout, connection lost, DNS, TLS, ...)
	Authentication  no credential, no authenticator, refresh failed, ...
	Validation      the response was received but rejected (status, content type, ...)
	Serialization   the response was valid but could not be decoded
	Cancellation    the request plan was cancelled or its deadline expired
	Unknown         anything else

Errors of a lower layer are wrapped rather than replaced, so errors.Is
and errors.As continue to see the original cause:

	var fe *failure.Error
	if errors.As(err, &fe) && fe.Kind == failure.Validation {
		log.Printf("server said %d", fe.StatusCode)
	}

The helpers KindOf, ReasonOf, and Has inspect an error chain without
requiring a type assertion.
*/
package failure
