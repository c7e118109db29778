// Package worker drains the calculation queue and completes calculations.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/lnkd/lnkd/internal/adapters/mq/queue"
	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/score"
	"github.com/lnkd/lnkd/pkg/logger"
	"github.com/lnkd/lnkd/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = queue.Job

// Updater persists the outcome of a job.
type Updater interface {
	Update(ctx context.Context, id string, fn func(*calculation.Calculation) error) (calculation.Calculation, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker processes jobs one at a time.
type InMemoryWorker struct {
	queue   Queue
	scorer  score.Scorer
	updater Updater
	name    string
	delay   time.Duration
	now     func() time.Time

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, scorer score.Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		scorer:  scorer,
		updater: updater,
		name:    "worker",
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is closed and drained or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "calculation failed",
					logger.String("calculationID", job.CalculationID),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) error {
	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("display delay interrupted: %w", ctx.Err())
		case <-timer.C:
		}
		metrics.RecordDisplayDelay(float64(w.delay.Milliseconds()))
	}

	start := time.Now()
	res, err := w.scorer.Score(ctx, job.Inputs)
	metrics.RecordComputeLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score calculation %s: %w", job.CalculationID, err)
	}
	for _, fb := range res.Values.Fallbacks {
		metrics.RecordInputFallback(string(fb.Field), string(fb.Reason))
	}

	done, err := w.updater.Update(ctx, job.CalculationID, func(c *calculation.Calculation) error {
		return c.Complete(res, w.now())
	})
	if err != nil {
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("complete calculation %s: %w", job.CalculationID, err)
	}

	metrics.RecordScoreTotal(res.Total)
	metrics.RecordCalculationCompleted()
	w.logger.Debug(ctx, "calculation done",
		logger.String("calculationID", job.CalculationID),
		logger.String("total", res.Display),
		logger.Bool("fallback", len(res.Values.Fallbacks) > 0),
		logger.Duration("elapsed", done.Elapsed()),
		logger.Duration("queued", w.now().Sub(job.SubmittedAt)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc
	started bool
	once    sync.Once
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one defaults
// to the number of CPUs.
func NewPool(workerCount int, q Queue, scorer score.Scorer, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, scorer, updater, workerOpts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker. Workers stop when ctx is done or the queue
// is closed and drained.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
// When ctx expires first the remaining work is cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}
		if !p.started {
			return
		}
		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("worker pool shutdown: %w", ctx.Err())
			}
			if err != nil {
				break
			}
		}
		if p.cancel != nil {
			p.cancel()
		}
	})
	return err
}
