// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import "time"

// Config is the complete client configuration.
type Config struct {
	Retry   Retry   `koanf:"retry"`
	Timeout Timeout `koanf:"timeout"`
	Auth    Auth    `koanf:"auth"`
	Log     Log     `koanf:"log"`
}

// Retry configures the client's retry policies. The exponential
// backoff settings apply to transient failures and retryable status
// codes, and TooManyRequests to 429 responses.
type Retry struct {
	// Enabled turns retries on. When false, no attempt is retried.
	Enabled     bool          `koanf:"enabled"`
	Limit       int           `koanf:"limit" validate:"gte=0"`
	Base        float64       `koanf:"base" validate:"gte=2"`
	Scale       time.Duration `koanf:"scale" validate:"gt=0"`
	Ceiling     time.Duration `koanf:"ceiling" validate:"gtefield=Scale"`
	Methods     []string      `koanf:"methods" validate:"dive,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS TRACE CONNECT"`
	StatusCodes []int         `koanf:"statuscodes" validate:"dive,gte=100,lte=599"`
	// Categories names the retryable transport error categories, using
	// the names returned by transient.Category.String.
	Categories      []string        `koanf:"categories" validate:"dive,oneof=Timeout ConnRefused ConnLost DNS Unreachable TLS"`
	TooManyRequests TooManyRequests `koanf:"toomanyrequests"`
}

// TooManyRequests configures the retry policy for 429 responses.
type TooManyRequests struct {
	Limit         int           `koanf:"limit" validate:"gte=0"`
	MaxRetryAfter time.Duration `koanf:"maxretryafter" validate:"gte=0"`
	// Fallback retries a 429 response lacking a usable Retry-After
	// header after an exponential delay, using the Base and Scale of
	// the enclosing Retry.
	Fallback bool `koanf:"fallback"`
}

// Timeout configures per-attempt timeouts. Attempt n times out after
// min(Attempt * Growth**n, Max).
type Timeout struct {
	Attempt time.Duration `koanf:"attempt" validate:"gt=0"`
	Growth  float64       `koanf:"growth" validate:"gte=1"`
	Max     time.Duration `koanf:"max" validate:"gtefield=Attempt"`
}

// Auth configures credential caches. A zero Leeway means
// auth.DefaultLeeway and a negative Leeway means none.
type Auth struct {
	RefreshTimeout time.Duration `koanf:"refreshtimeout" validate:"gt=0"`
	Leeway         time.Duration `koanf:"leeway"`
	RefreshLimit   int           `koanf:"refreshlimit" validate:"gt=0"`
	RefreshWindow  time.Duration `koanf:"refreshwindow" validate:"gt=0"`
}

// Log configures the execution log installed by package logging.
type Log struct {
	Level string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
}
