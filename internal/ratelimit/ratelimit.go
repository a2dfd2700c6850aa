// Package ratelimit implements the non-critical notification throttle
// (C8): a single worker draining a bounded queue, spacing invocations by
// at least MinDelay. Structurally this is writequeue's channel/goroutine
// skeleton with retry replaced by pacing, since both are "one consumer
// draining a bounded backpressure queue" shaped components.
package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const defaultQueueSize = 1000

const defaultMinDelay = 200 * time.Millisecond

var (
	jobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_ratelimit_jobs_submitted_total",
		Help: "Total number of non-critical notification jobs submitted.",
	})
	jobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_ratelimit_jobs_dropped_total",
		Help: "Total number of non-critical notification jobs dropped because the queue was full.",
	})
	jobsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_ratelimit_jobs_run_total",
		Help: "Total number of non-critical notification jobs executed.",
	})
)

// Job is a fire-and-forget unit of work (spec §4.8: "callers must treat
// them as fire-and-forget").
type Job func()

// Limiter drains a bounded queue with at least MinDelay between job
// invocations. Critical notification paths bypass it entirely — they call
// notify.Registry.Fan directly.
type Limiter struct {
	jobs     chan Job
	minDelay time.Duration
	logger   *zap.SugaredLogger

	once sync.Once
	done chan struct{}
}

// New constructs a Limiter with queueSize (defaulting to 1000) and
// minDelay (defaulting to 200ms).
func New(queueSize int, minDelay time.Duration, logger *zap.SugaredLogger) *Limiter {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if minDelay <= 0 {
		minDelay = defaultMinDelay
	}
	return &Limiter{
		jobs:     make(chan Job, queueSize),
		minDelay: minDelay,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the single worker goroutine.
func (l *Limiter) Start() {
	go l.run()
}

// Stop halts the worker after draining remaining queued jobs.
func (l *Limiter) Stop() {
	l.once.Do(func() {
		close(l.jobs)
	})
	<-l.done
}

// Submit enqueues job. If the queue is full, the job is dropped and a
// warning logged (spec §4.8: "incoming submissions are dropped with a
// warning").
func (l *Limiter) Submit(job Job) {
	select {
	case l.jobs <- job:
		jobsSubmitted.Inc()
	default:
		if l.logger != nil {
			l.logger.Warn("rate limiter queue full, dropping notification job")
		}
		jobsDropped.Inc()
	}
}

func (l *Limiter) run() {
	defer close(l.done)

	var last time.Time
	for job := range l.jobs {
		if !last.IsZero() {
			if wait := l.minDelay - time.Since(last); wait > 0 {
				time.Sleep(wait)
			}
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil && l.logger != nil {
					l.logger.Errorw("rate-limited job panicked", "recover", rec)
				}
			}()
			job()
		}()
		jobsRun.Inc()
		last = time.Now()
	}
}
