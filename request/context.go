// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "context"

type executionKey struct{}

// NewContext returns a copy of ctx carrying e. The client attaches the
// execution to the context of every attempt's request, so adapters and
// authenticators can reach the execution state through
// http.Request.Context.
func NewContext(ctx context.Context, e *Execution) context.Context {
	return context.WithValue(ctx, executionKey{}, e)
}

// FromContext returns the execution carried by ctx, if any.
func FromContext(ctx context.Context) (*Execution, bool) {
	e, ok := ctx.Value(executionKey{}).(*Execution)
	return e, ok && e != nil
}
