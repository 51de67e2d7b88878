package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/domain/task"
	"github.com/kailas-cloud/recall/internal/metrics"
)

// Pool defaults.
const (
	DefaultMaxJobs     = 10
	DefaultJobTimeout  = 300 * time.Second
	DefaultPollTimeout = 500 * time.Millisecond

	// finalizeTimeout bounds storing an outcome after the job ran.
	finalizeTimeout = 10 * time.Second
)

var tracer = otel.Tracer("github.com/kailas-cloud/recall/internal/usecase/worker")

// Config holds pool settings.
type Config struct {
	MaxJobs     int
	JobTimeout  time.Duration
	PollTimeout time.Duration
}

// Pool runs up to MaxJobs jobs concurrently.
type Pool struct {
	queue  Queue
	proc   *Processor
	cfg    Config
	logger *zap.Logger
}

// NewPool creates a worker pool; zero config values select the defaults.
func NewPool(queue Queue, proc *Processor, cfg Config, logger *zap.Logger) *Pool {
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = DefaultMaxJobs
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	return &Pool{queue: queue, proc: proc, cfg: cfg, logger: logger}
}

// Run requeues jobs abandoned by crashed workers, then consumes until ctx is done.
// Jobs already running when ctx is canceled finish and store their outcome.
// A closed queue stops the pool and is returned so the process can restart.
func (p *Pool) Run(ctx context.Context) error {
	n, err := p.queue.Requeue(ctx)
	if n > 0 {
		metrics.JobsRequeuedTotal.Add(float64(n))
		p.logger.Info("Requeued abandoned jobs", zap.Int("count", n))
	}
	if err != nil {
		p.logger.Error("Requeue failed", zap.Error(err))
	}

	p.logger.Info("Worker pool started",
		zap.Int("max_jobs", p.cfg.MaxJobs),
		zap.Duration("job_timeout", p.cfg.JobTimeout),
	)

	runCtx, stop := context.WithCancelCause(ctx)
	defer stop(nil)

	var wg sync.WaitGroup
	for range p.cfg.MaxJobs {
		wg.Go(func() {
			for runCtx.Err() == nil {
				p.next(runCtx, stop)
			}
		})
	}
	wg.Wait()

	if cause := context.Cause(runCtx); errors.Is(cause, task.ErrQueueClosed) {
		p.logger.Error("Worker pool stopped: job queue closed", zap.Error(cause))
		return fmt.Errorf("worker pool: %w", cause)
	}
	p.logger.Info("Worker pool stopped")
	return nil
}

// next claims and runs at most one job. A closed queue stops the whole pool.
func (p *Pool) next(ctx context.Context, stop context.CancelCauseFunc) {
	j, d, err := p.queue.Claim(ctx, p.cfg.PollTimeout)
	switch {
	case err == nil:
	case errors.Is(err, task.ErrNoDelivery), ctx.Err() != nil:
		return
	case errors.Is(err, task.ErrQueueClosed):
		stop(err)
		return
	case errors.Is(err, task.ErrJobNotFound):
		p.logger.Warn("Dropped job without state", zap.Error(err))
		return
	default:
		p.logger.Error("Claim failed", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.PollTimeout):
		}
		return
	}

	p.run(context.WithoutCancel(ctx), j, d)
}

func (p *Pool) run(ctx context.Context, j task.Job, d task.Delivery) {
	ctx, span := tracer.Start(ctx, "embed_document", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("job_id", j.ID),
		attribute.String("collection", j.Collection),
		attribute.Int("attempt", j.Attempts),
	)

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	outcome, procErr := p.proc.Process(jobCtx, j)
	cancel()
	duration := time.Since(start)

	status := string(outcome.Status)
	if procErr != nil {
		status = string(task.OutcomeError)
		span.SetStatus(codes.Error, procErr.Error())
	}

	fctx, fcancel := context.WithTimeout(ctx, finalizeTimeout)
	defer fcancel()

	var storeErr error
	if procErr != nil {
		storeErr = p.queue.Fail(fctx, j, procErr, d)
	} else {
		storeErr = p.queue.Complete(fctx, j, outcome, d)
	}

	metrics.JobsProcessedTotal.WithLabelValues(status).Inc()
	metrics.JobDuration.WithLabelValues(status).Observe(duration.Seconds())

	fields := []zap.Field{
		zap.String("job_id", j.ID),
		zap.String("collection", j.Collection),
		zap.String("doc_id", j.DocID),
		zap.String("status", status),
		zap.Int("attempt", j.Attempts),
		zap.Duration("duration", duration),
	}
	switch {
	case procErr != nil:
		p.logger.Warn("Job failed", append(fields, zap.Error(procErr))...)
	case !outcome.Succeeded():
		p.logger.Warn("Job failed", append(fields, zap.String("error", outcome.Error))...)
	default:
		p.logger.Info("Job processed", fields...)
	}
	if storeErr != nil {
		p.logger.Error("Storing job outcome failed", zap.String("job_id", j.ID), zap.Error(storeErr))
	}
}
