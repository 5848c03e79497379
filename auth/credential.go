// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// A Credential is a value which can be stamped onto a request to
// authenticate it.
type Credential struct {
	// Scheme is the HTTP authentication scheme, for example "Bearer" or
	// "Basic".
	Scheme string

	// Token is the scheme-specific credential. An empty token means no
	// credential.
	Token string

	// Expiry is the time after which the credential is no longer valid.
	// The zero value means the credential does not expire.
	Expiry time.Time
}

// Valid reports whether the credential is present and does not expire
// within leeway of now.
func (c Credential) Valid(now time.Time, leeway time.Duration) bool {
	if c.Token == "" {
		return false
	}
	return c.Expiry.IsZero() || now.Add(leeway).Before(c.Expiry)
}

// Apply sets the Authorization header of r to the credential, replacing
// any existing value.
func (c Credential) Apply(r *http.Request) {
	if c.Scheme == "" {
		r.Header.Set("Authorization", c.Token)
		return
	}
	r.Header.Set("Authorization", c.Scheme+" "+c.Token)
}

// Stamped returns the token carried by the Authorization header of r,
// without its scheme, or the empty string if there is none.
func Stamped(r *http.Request) string {
	if r == nil {
		return ""
	}
	v := r.Header.Get("Authorization")
	if i := strings.IndexByte(v, ' '); i >= 0 {
		return strings.TrimSpace(v[i+1:])
	}
	return v
}

// Bearer returns a Bearer credential for token. If the token is a JWT
// carrying an exp claim, the credential expires at that time.
func Bearer(token string) Credential {
	exp, _ := ExpiryFromJWT(token)
	return Credential{Scheme: "Bearer", Token: token, Expiry: exp}
}

// ExpiryFromJWT returns the expiry time held in the exp claim of a JSON
// Web Token. The token's signature is not verified: the result is only
// used to decide when to refresh a token the server will verify anyway.
// A token without an exp claim yields the zero time.
func ExpiryFromJWT(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}
