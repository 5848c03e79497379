// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from HTTP request execution into
// low-level error codes, called categories, which distinguish transient
// failures (worth retrying) from permanent ones. Retry policies in
// package retry decide on the basis of these categories, and they are
// also handy for bucketing error metrics.
//
// Package transient depends only on the standard library, so it doesn't
// bring any significant dependencies when imported as a standalone
// package.
package transient
