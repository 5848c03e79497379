// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/gogama/reqx"
	"github.com/gogama/reqx/auth"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/timeout"
	"github.com/gogama/reqx/transient"

	"github.com/rs/zerolog"
)

// Exponential returns the exponential backoff configuration described
// by r.
func (r Retry) Exponential() retry.ExponentialConfig {
	return retry.ExponentialConfig{
		Limit:       r.Limit,
		Base:        r.Base,
		Scale:       r.Scale,
		Ceiling:     r.Ceiling,
		Methods:     r.Methods,
		StatusCodes: r.StatusCodes,
		Categories:  categories(r.Categories),
	}
}

// TooManyRequestsConfig returns the 429 policy configuration described
// by r.
func (r Retry) TooManyRequestsConfig() retry.TooManyRequestsConfig {
	cfg := retry.TooManyRequestsConfig{
		Limit:         r.TooManyRequests.Limit,
		MaxRetryAfter: r.TooManyRequests.MaxRetryAfter,
	}
	if r.TooManyRequests.Fallback {
		cfg.Fallback = retry.FallbackExponential(r.Base, r.Scale)
	}
	return cfg
}

// Policies returns the retry policies described by r, in the order the
// client should consult them.
func (r Retry) Policies() []retry.Policy {
	if !r.Enabled {
		return []retry.Policy{retry.Never}
	}
	return []retry.Policy{
		retry.NewExponential(r.Exponential()),
		retry.NewTooManyRequests(r.TooManyRequestsConfig()),
	}
}

// Policy returns the attempt timeout policy described by t.
func (t Timeout) Policy() timeout.Policy {
	if t.Growth == 1 {
		return timeout.Fixed(t.Attempt)
	}
	return timeout.Growing(t.Attempt, t.Growth, t.Max)
}

// CacheConfig returns the credential cache configuration described by
// a.
func (a Auth) CacheConfig() auth.CacheConfig {
	return auth.CacheConfig{
		RefreshTimeout: a.RefreshTimeout,
		Leeway:         a.Leeway,
		RefreshLimit:   a.RefreshLimit,
		RefreshWindow:  a.RefreshWindow,
	}
}

// ZerologLevel returns the zerolog level named by l, or
// zerolog.InfoLevel if the name is not recognized.
func (l Log) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Apply sets the retry and timeout policies of cl from cfg. Other
// client fields are left alone.
func (cfg *Config) Apply(cl *reqx.Client) {
	cl.RetryPolicies = cfg.Retry.Policies()
	cl.TimeoutPolicy = cfg.Timeout.Policy()
}

func categories(names []string) []transient.Category {
	if names == nil {
		return nil
	}
	byName := make(map[string]transient.Category)
	for _, c := range transient.Categories() {
		byName[c.String()] = c
	}
	cs := make([]transient.Category, 0, len(names))
	for _, name := range names {
		if c, ok := byName[name]; ok {
			cs = append(cs, c)
		}
	}
	return cs
}
