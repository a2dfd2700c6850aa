// Package writequeue implements the bounded FIFO write-behind queue (C2):
// producers never block, a single consumer applies jobs against the
// durable SQL store in issue order, and a dead-letter log absorbs whatever
// survives three retries. Directly generalizes the teacher's
// internal/worker.Pool — the batching/flush-ticker shape is dropped because
// per-match causal ordering (spec invariant 10) requires applying one job
// at a time, but the channel/goroutine/metrics/graceful-stop skeleton is
// kept.
package writequeue

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Backoffs are the three retry delays from spec §6 (WRITE_RETRY_BACKOFFS).
var Backoffs = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

// MaxAttempts is the number of tries (including the first) before a job is
// routed to the dead-letter log.
const MaxAttempts = 4

// Applier applies one Job against the durable store. Implemented by
// internal/sqlstore.
type Applier interface {
	Apply(ctx context.Context, job Job) error
}

var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_writequeue_jobs_enqueued_total",
		Help: "Total number of write jobs enqueued.",
	})
	jobsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_writequeue_jobs_applied_total",
		Help: "Total number of write jobs applied successfully.",
	})
	jobsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_writequeue_jobs_dead_lettered_total",
		Help: "Total number of write jobs that exhausted retries.",
	})
	jobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ladder_writequeue_jobs_dropped_total",
		Help: "Total number of write jobs dropped because the queue was full.",
	})
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ladder_writequeue_depth",
		Help: "Current depth of the write queue.",
	})
	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ladder_writequeue_apply_duration_seconds",
		Help:    "Duration of applying a single write job to the durable store.",
		Buckets: prometheus.DefBuckets,
	})
)

// PoolConfig configures the Queue.
type PoolConfig struct {
	Depth          int // WRITE_QUEUE_DEPTH, default 10000
	DeadLetterPath string
	Applier        Applier
	Logger         *zap.Logger
}

// Queue is the single-consumer bounded write-behind queue.
type Queue struct {
	cfg    PoolConfig
	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger

	dlMu   sync.Mutex
	dlFile *os.File
}

// New constructs a Queue. Call Start to launch the consumer goroutine.
func New(cfg PoolConfig) *Queue {
	if cfg.Depth <= 0 {
		cfg.Depth = 10000
	}
	return &Queue{
		cfg:    cfg,
		jobs:   make(chan Job, cfg.Depth),
		logger: cfg.Logger.Sugar(),
	}
}

// Start launches the consumer goroutine. ctx cancellation drains in-flight
// work before Stop returns.
func (q *Queue) Start(ctx context.Context) error {
	q.ctx, q.cancel = context.WithCancel(ctx)

	if q.cfg.DeadLetterPath != "" {
		f, err := os.OpenFile(q.cfg.DeadLetterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		q.dlFile = f
	}

	q.wg.Add(1)
	go q.consume()
	q.logger.Infow("write queue started", "depth", q.cfg.Depth)
	return nil
}

// Stop cancels the consumer, drains remaining jobs, and closes the
// dead-letter log.
func (q *Queue) Stop() {
	q.logger.Info("stopping write queue")
	q.cancel()
	close(q.jobs)
	q.wg.Wait()
	if q.dlFile != nil {
		q.dlFile.Close()
	}
	q.logger.Info("write queue stopped")
}

// Enqueue adds job to the queue. It never blocks: if the queue is full the
// job is dropped and a warning logged (spec §4.2 "backpressure is
// advisory"). Returns false when dropped.
func (q *Queue) Enqueue(job Job) bool {
	job.Enqueued = time.Now()

	depth := len(q.jobs)
	if cap(q.jobs) > 0 && float64(depth)/float64(cap(q.jobs)) >= 0.8 {
		q.logger.Warnw("write queue above 80% capacity", "depth", depth, "capacity", cap(q.jobs))
	}

	select {
	case q.jobs <- job:
		jobsEnqueued.Inc()
		queueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		q.logger.Warnw("write queue full, dropping job", "kind", job.Kind, "matchID", job.MatchID)
		jobsDropped.Inc()
		return false
	}
}

// Depth returns the current queue length.
func (q *Queue) Depth() int {
	return len(q.jobs)
}

func (q *Queue) consume() {
	defer q.wg.Done()

	for job := range q.jobs {
		queueDepth.Set(float64(len(q.jobs)))
		q.applyWithRetry(job)
	}
}

// applyWithRetry applies job, retrying up to MaxAttempts-1 additional times
// with the backoffs from spec §6, then dead-letters it. Jobs for the same
// MatchID are never reordered: this method only returns once job is either
// applied or dead-lettered, and the channel guarantees FIFO delivery to the
// single consumer, so the next job for the same match cannot start early.
func (q *Queue) applyWithRetry(job Job) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		job.Attempt = attempt + 1

		start := time.Now()
		ctx, cancel := context.WithTimeout(q.ctx, 10*time.Second)
		err := q.cfg.Applier.Apply(ctx, job)
		cancel()
		applyDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			jobsApplied.Inc()
			return
		}
		lastErr = err
		q.logger.Warnw("write job failed", "kind", job.Kind, "matchID", job.MatchID, "attempt", job.Attempt, "error", err)

		if attempt < len(Backoffs) {
			select {
			case <-time.After(Backoffs[attempt]):
			case <-q.ctx.Done():
				break
			}
		}
	}

	q.deadLetter(job, lastErr)
}

type deadLetterRecord struct {
	Kind      Kind      `json:"kind"`
	MatchID   int64     `json:"match_id,omitempty"`
	Enqueued  time.Time `json:"enqueued"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error"`
	Payload   Job       `json:"payload"`
	RecordedAt time.Time `json:"recorded_at"`
}

// deadLetter writes job and its terminal error to the append-only
// dead-letter log. A write-queue failure here is itself swallowed: the
// hot store remains authoritative (spec §5) and the consumer must keep
// running.
func (q *Queue) deadLetter(job Job, cause error) {
	jobsDeadLettered.Inc()
	q.logger.Errorw("job dead-lettered after exhausting retries", "kind", job.Kind, "matchID", job.MatchID, "error", cause)

	if q.dlFile == nil {
		return
	}

	rec := deadLetterRecord{
		Kind:       job.Kind,
		MatchID:    job.MatchID,
		Enqueued:   job.Enqueued,
		Attempts:   job.Attempt,
		Error:      cause.Error(),
		Payload:    job,
		RecordedAt: time.Now(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		q.logger.Errorw("failed to marshal dead-letter record", "error", err)
		return
	}
	data = append(data, '\n')

	q.dlMu.Lock()
	defer q.dlMu.Unlock()
	if _, err := q.dlFile.Write(data); err != nil {
		q.logger.Errorw("failed to write dead-letter record", "error", err)
	}
}
