// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package dispatch provides dispatchers, which choose the goroutine on
// which completion callbacks run.
//
// A caller of reqx.Client.Go supplies a Dispatcher to receive the
// execution's result, for example a Queue drained by a single goroutine
// which owns some state and must not be entered concurrently.
package dispatch

import "sync"

// A Dispatcher runs functions on an execution context of its choosing.
// Dispatch must eventually run f exactly once.
type Dispatcher interface {
	Dispatch(f func())
}

// The Func type is an adapter to allow the use of ordinary functions as
// dispatchers.
type Func func(f func())

// Dispatch calls d(f).
func (d Func) Dispatch(f func()) {
	d(f)
}

// Inline runs each function immediately on the calling goroutine.
var Inline Dispatcher = Func(func(f func()) {
	f()
})

// Goroutine runs each function on a new goroutine.
var Goroutine Dispatcher = Func(func(f func()) {
	go f()
})

// A Queue runs dispatched functions one at a time, in dispatch order,
// on a single goroutine it owns.
//
// Functions running on the queue must not dispatch onto the same queue
// and wait for the result, or the queue deadlocks.
type Queue struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts a queue whose backlog holds up to buffer functions
// before Dispatch blocks.
func NewQueue(buffer int) *Queue {
	if buffer < 0 {
		panic("reqx/dispatch: negative buffer")
	}
	q := &Queue{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for f := range q.tasks {
		f()
	}
}

// Dispatch queues f. Once the queue is closed, Dispatch runs f on the
// calling goroutine instead, so no function is ever dropped.
func (q *Queue) Dispatch(f func()) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		f()
		return
	}
	q.tasks <- f
	q.mu.RUnlock()
}

// Close stops the queue accepting functions, runs those already
// queued, and waits for them to finish. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	<-q.done
}
