// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging writes structured logs of request plan executions
// using zerolog.
//
// The client never logs by itself. Install pushes event handlers onto a
// HandlerGroup so that every execution run by a client using the group
// is logged:
//
//	handlers := &reqx.HandlerGroup{}
//	logging.Install(handlers, zerolog.New(os.Stderr))
//	client := &reqx.Client{Handlers: handlers}
//
// Attempts are logged at debug level, retries and plan timeouts at
// warn level, and the outcome of each execution at info level on
// success or error level on failure. If the plan context carries a
// zerolog logger (see zerolog.Logger.WithContext), that logger is used
// instead of the one given to Install.
package logging

import (
	"github.com/gogama/reqx"
	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"

	"github.com/rs/zerolog"
)

type handler struct {
	base zerolog.Logger
}

// Install adds logging handlers for every event to g.
func Install(g *reqx.HandlerGroup, logger zerolog.Logger) {
	g.Subscribe(&handler{base: logger})
}

func (h *handler) Handle(evt reqx.Event, e *request.Execution) {
	l := h.logger(e)
	switch evt {
	case reqx.BeforeExecutionStart:
		l.Debug().
			Str("method", e.Plan.Method).
			Str("url", e.Plan.URL.Redacted()).
			Str("auth", e.Plan.Auth().String()).
			Msg("execution starting")
	case reqx.BeforeAttempt:
		l.Debug().
			Int("attempt", e.Attempt).
			Str("url", e.Request.URL.Redacted()).
			Msg("attempt starting")
	case reqx.AfterAttemptTimeout:
		l.Debug().
			Int("attempt", e.Attempt).
			Int("attempt_timeouts", e.AttemptTimeouts).
			Msg("attempt timed out")
	case reqx.AfterAttempt:
		m := e.LastMetrics()
		ev := l.Debug().
			Int("attempt", e.Attempt).
			Int("status", e.StatusCode())
		if m != nil {
			ev = ev.Dur("duration", m.Duration())
		}
		if e.Err != nil {
			ev = ev.Stringer("kind", failure.KindOf(e.Err)).Err(e.Err)
		}
		ev.Msg("attempt ended")
	case reqx.BeforeRetryWait:
		ev := l.Warn().
			Int("attempt", e.Attempt).
			Int("status", e.StatusCode()).
			Err(e.Err)
		if m := e.LastMetrics(); m != nil {
			ev = ev.Dur("delay", m.Delay)
		}
		ev.Msg("retrying")
	case reqx.AfterPlanTimeout:
		l.Warn().
			Int("attempt", e.Attempt).
			Dur("elapsed", e.Duration()).
			Msg("plan timed out")
	case reqx.AfterExecutionEnd:
		h.outcome(l, e)
	}
}

func (h *handler) outcome(l *zerolog.Logger, e *request.Execution) {
	var ev *zerolog.Event
	if e.Err == nil {
		ev = l.Info()
	} else {
		fe := failure.Classify(e.Err)
		ev = l.Error().
			Stringer("kind", fe.Kind).
			Err(e.Err)
		if r := failure.ReasonOf(e.Err); r != failure.Unspecified {
			ev = ev.Stringer("reason", r)
		}
	}
	ev.Str("method", e.Plan.Method).
		Str("url", e.Plan.URL.Redacted()).
		Int("status", e.StatusCode()).
		Int("attempts", e.Attempt+1).
		Dur("duration", e.Duration()).
		Msg("execution ended")
}

func (h *handler) logger(e *request.Execution) *zerolog.Logger {
	if e.Plan != nil {
		if l := zerolog.Ctx(e.Plan.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &h.base
}
