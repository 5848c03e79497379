// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth provides authenticators, which stamp credentials onto
// HTTP request attempts, and a credential cache with single-flight
// refresh.
//
// A plan names the class of credential it needs with a
// request.AuthDescriptor. Before every attempt, the client looks up the
// Authenticator serving that descriptor and lets it adapt the attempt's
// request.
//
// Credentials which expire or may be revoked are held in a Cache and
// stamped by a Cached authenticator:
//
//	cache := auth.NewCache(auth.RefresherFunc(fetchToken), auth.CacheConfig{})
//	client := &reqx.Client{
//		Authenticators: []auth.Authenticator{
//			auth.NewCached(request.Primary, cache),
//		},
//	}
//
// When many requests find the credential missing at once, the cache
// runs one refresh and every request waits for its result.
//
// Authenticators compose into fallback chains with NewChain. Whether a
// stage's failure lets the chain fall through to the next stage is
// decided by a Trigger: FallbackOnMissingCredential, the default, or
// FallbackOnAnyAuthError.
package auth
