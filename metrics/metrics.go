// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about request plan
// executions.
//
// A Collector is fed by event handlers installed into a HandlerGroup:
//
//	c := metrics.NewCollector()
//	prometheus.MustRegister(c)
//	handlers := &reqx.HandlerGroup{}
//	c.Install(handlers)
//	client := &reqx.Client{Handlers: handlers}
package metrics

import (
	"strconv"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/failure"
	"github.com/gogama/reqx/request"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reqx"

// OutcomeSuccess is the kind label value of successful executions.
const OutcomeSuccess = "success"

// Collector implements prometheus.Collector for execution metrics.
type Collector struct {
	attempts      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	timeouts      prometheus.Counter
	planTimeouts  prometheus.Counter
	executions    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	retryDelay    prometheus.Histogram
	attemptsTaken prometheus.Histogram
}

// NewCollector creates a new Collector. Register it with a
// prometheus.Registerer and Install it into a HandlerGroup.
func NewCollector() *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Number of request attempts sent, by response status code (0 when no response was received).",
			},
			[]string{"method", "code"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Number of retries decided, by the error kind of the attempt being retried.",
			},
			[]string{"method", "kind"},
		),
		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempt_timeouts_total",
				Help:      "Number of request attempts which timed out.",
			},
		),
		planTimeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_timeouts_total",
				Help:      "Number of executions ended by their plan deadline.",
			},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Number of completed executions, by outcome: success or the error kind.",
			},
			[]string{"method", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Wall-clock duration of executions including all attempts and retry waits.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "kind"},
		),
		retryDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retry_delay_seconds",
				Help:      "Delay before each retry.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		attemptsTaken: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_attempts",
				Help:      "Number of attempts made by each completed execution.",
				Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
			},
		),
	}
}

// Describe implements prometheus.Collector interface Describe method.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.attempts.Describe(ch)
	c.retries.Describe(ch)
	c.timeouts.Describe(ch)
	c.planTimeouts.Describe(ch)
	c.executions.Describe(ch)
	c.duration.Describe(ch)
	c.retryDelay.Describe(ch)
	c.attemptsTaken.Describe(ch)
}

// Collect implements prometheus.Collector interface Collect method.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.attempts.Collect(ch)
	c.retries.Collect(ch)
	c.timeouts.Collect(ch)
	c.planTimeouts.Collect(ch)
	c.executions.Collect(ch)
	c.duration.Collect(ch)
	c.retryDelay.Collect(ch)
	c.attemptsTaken.Collect(ch)
}

// Install adds the handlers feeding c to g.
func (c *Collector) Install(g *reqx.HandlerGroup) {
	g.PushBack(reqx.AfterAttempt, reqx.HandlerFunc(c.afterAttempt))
	g.PushBack(reqx.AfterAttemptTimeout, reqx.HandlerFunc(c.afterAttemptTimeout))
	g.PushBack(reqx.BeforeRetryWait, reqx.HandlerFunc(c.beforeRetryWait))
	g.PushBack(reqx.AfterPlanTimeout, reqx.HandlerFunc(c.afterPlanTimeout))
	g.PushBack(reqx.AfterExecutionEnd, reqx.HandlerFunc(c.afterExecutionEnd))
}

func (c *Collector) afterAttempt(_ reqx.Event, e *request.Execution) {
	c.attempts.WithLabelValues(e.Plan.Method, strconv.Itoa(e.StatusCode())).Inc()
}

func (c *Collector) afterAttemptTimeout(_ reqx.Event, _ *request.Execution) {
	c.timeouts.Inc()
}

func (c *Collector) beforeRetryWait(_ reqx.Event, e *request.Execution) {
	c.retries.WithLabelValues(e.Plan.Method, failure.KindOf(e.Err).String()).Inc()
	if m := e.LastMetrics(); m != nil {
		c.retryDelay.Observe(m.Delay.Seconds())
	}
}

func (c *Collector) afterPlanTimeout(_ reqx.Event, _ *request.Execution) {
	c.planTimeouts.Inc()
}

func (c *Collector) afterExecutionEnd(_ reqx.Event, e *request.Execution) {
	kind := OutcomeSuccess
	if e.Err != nil {
		kind = failure.KindOf(e.Err).String()
	}
	c.executions.WithLabelValues(e.Plan.Method, kind).Inc()
	c.duration.WithLabelValues(e.Plan.Method, kind).Observe(e.Duration().Seconds())
	c.attemptsTaken.Observe(float64(len(e.Metrics)))
}
