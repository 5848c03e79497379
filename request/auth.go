// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// An AuthDescriptor identifies which class of credential applies to a
// request plan. The client uses it to select the authenticator which
// stamps credentials on each attempt.
//
// AuthDescriptor is an open enumeration: the constants below cover the
// common credential classes, and applications may define their own
// descriptors for additional classes.
type AuthDescriptor string

const (
	// NoAuth indicates attempts are sent without authentication. It is
	// the descriptor of a plan on which WithAuth was never called.
	NoAuth AuthDescriptor = ""
	// Primary identifies the primary credential, for example the
	// signed-in user's token.
	Primary AuthDescriptor = "primary"
	// Secondary identifies a secondary credential, for example a
	// service or guest token.
	Secondary AuthDescriptor = "secondary"
	// PrimaryWithSecondaryFallback identifies the primary credential,
	// falling back to the secondary credential when no primary
	// credential is available.
	PrimaryWithSecondaryFallback AuthDescriptor = "primary-with-secondary-fallback"
	// PrimaryWithNoAuthFallback identifies the primary credential,
	// falling back to sending the request unauthenticated when no
	// primary credential is available.
	PrimaryWithNoAuthFallback AuthDescriptor = "primary-with-no-auth-fallback"
	// ElevatedPrimary identifies an elevated (step-up) variant of the
	// primary credential.
	ElevatedPrimary AuthDescriptor = "elevated-primary"
	// ElevatedSecondary identifies an elevated variant of the secondary
	// credential.
	ElevatedSecondary AuthDescriptor = "elevated-secondary"
)

// String returns the descriptor as a string, using "none" for NoAuth.
func (d AuthDescriptor) String() string {
	if d == NoAuth {
		return "none"
	}
	return string(d)
}
