// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"github.com/gogama/reqx/request"
)

// A HandlerGroup holds, for each event, the chain of handlers a Client
// runs when the event occurs. The handlers in a chain run in the order
// they were added, on the goroutine running the execution.
//
// The zero value is an empty group ready to use. A nil *HandlerGroup
// runs no handlers. Do not add handlers to a group while a Client is
// executing plans with it.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack adds h to the back of the handler chain for evt.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("reqx: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic("reqx: unknown event")
	}
	g.chains[evt] = append(g.chains[evt], h)
}

// Subscribe adds h to the back of the handler chain for each of evts,
// or for every event if evts is empty. Packages such as logging and
// metrics use Subscribe to install one handler for many events.
func (g *HandlerGroup) Subscribe(h Handler, evts ...Event) {
	if len(evts) == 0 {
		evts = Events()
	}
	for _, evt := range evts {
		g.PushBack(evt, h)
	}
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	if g == nil || evt < 0 || int(evt) >= numEvents {
		return 0
	}
	return len(g.chains[evt])
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	if g == nil {
		return
	}
	for _, h := range g.chains[evt] {
		h.Handle(evt, e)
	}
}

// A Handler handles an event during a request plan execution. Handlers
// may read the execution, and may change it where the documentation of
// the event allows.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
