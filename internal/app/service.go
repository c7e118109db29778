// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/lnkd/lnkd/internal/adapters/mq/queue"
	workerpool "github.com/lnkd/lnkd/internal/adapters/mq/worker"
	"github.com/lnkd/lnkd/internal/adapters/repository"
	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/dedupe"
	"github.com/lnkd/lnkd/internal/domain/model"
	"github.com/lnkd/lnkd/internal/domain/score"
	"github.com/lnkd/lnkd/pkg/logger"
	"github.com/lnkd/lnkd/pkg/metrics"
)

// ErrStopped is returned by asynchronous operations while the service is not
// running. It matches jobqueue.ErrClosed.
var ErrStopped = fmt.Errorf("service not running: %w", jobqueue.ErrClosed)

// Service implements the API dependencies for the score calculator.
type Service struct {
	mu sync.RWMutex
	// keyMu serializes keyed submissions so a key is never seen bound
	// before its calculation is stored.
	keyMu sync.Mutex

	// Core components
	engine *score.Engine
	store  repository.Store
	keys   dedupe.Deduper
	queue  jobqueue.Queue
	pool   *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	storeCapacity int
	displayDelay  time.Duration
	now           func() time.Time

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending calculations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStoreCapacity sets how many calculations are kept in memory.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.storeCapacity = capacity
		}
	}
}

// WithDisplayDelay sets how long a calculation stays in the computing phase.
func WithDisplayDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.displayDelay = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source for calculation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:        score.NewEngine(),
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		storeCapacity: 50_000,
		displayDelay:  1500 * time.Millisecond,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store, queue and worker pool and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.store = repository.NewMemoryStore(repository.WithCapacity(s.storeCapacity))
	s.keys = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.storeCapacity))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.store,
		workerpool.WithDisplayDelay(s.displayDelay),
		workerpool.WithClock(s.now),
	)
	// Workers outlive the request that started the service; Stop ends them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "score service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("storeCapacity", s.storeCapacity),
		logger.Duration("displayDelay", s.displayDelay),
	)
	return nil
}

// Stop drains pending calculations and waits for the workers until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping score service...")

	s.started = false
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop score service: %w", err)
	}
	s.logger.Info(ctx, "score service stopped")
	return nil
}

// Score evaluates in synchronously.
func (s *Service) Score(ctx context.Context, in score.Inputs) (score.Result, error) {
	start := time.Now()
	res, err := s.engine.Score(ctx, in)
	if err != nil {
		return score.Result{}, err
	}
	metrics.RecordComputeLatency(float64(time.Since(start).Microseconds()) / 1000)
	for _, fb := range res.Values.Fallbacks {
		metrics.RecordInputFallback(string(fb.Field), string(fb.Reason))
	}
	metrics.RecordScoreTotal(res.Total)
	return res, nil
}

// Submit stores a new calculation in the computing phase and queues it.
// A full queue is reported as jobqueue.ErrFull.
func (s *Service) Submit(ctx context.Context, in score.Inputs) (calculation.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return calculation.Calculation{}, ErrStopped
	}
	return s.submit(ctx, uuid.NewString(), in)
}

// SubmitOnce is Submit guarded by a client idempotency key: repeating a key
// returns the calculation the first submission created. An empty key
// behaves like Submit.
func (s *Service) SubmitOnce(ctx context.Context, key string, in score.Inputs) (calculation.Calculation, error) {
	if key == "" {
		return s.Submit(ctx, in)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return calculation.Calculation{}, ErrStopped
	}

	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	id, claimed := s.keys.Claim(ctx, key, uuid.NewString())
	if !claimed {
		c, err := s.store.Get(ctx, id)
		if err == nil {
			metrics.RecordCalculationReplayed()
			return c, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return calculation.Calculation{}, err
		}
		// The calculation was evicted; the key starts over.
		s.keys.Release(ctx, key)
		id, _ = s.keys.Claim(ctx, key, uuid.NewString())
	}

	c, err := s.submit(ctx, id, in)
	if err != nil {
		s.keys.Release(ctx, key)
	}
	return c, err
}

// submit expects s.mu to be held.
func (s *Service) submit(ctx context.Context, id string, in score.Inputs) (calculation.Calculation, error) {
	now := s.now()
	c := calculation.New(id, in, now)
	if err := c.Start(now); err != nil {
		return calculation.Calculation{}, err
	}
	if err := s.store.Put(ctx, c); err != nil {
		return calculation.Calculation{}, fmt.Errorf("store calculation: %w", err)
	}
	if err := s.enqueue(ctx, c.ID, in, now); err != nil {
		_ = s.store.Delete(ctx, c.ID)
		return calculation.Calculation{}, err
	}

	metrics.RecordCalculationSubmitted()
	s.logger.Debug(ctx, "calculation submitted", logger.String("calculationID", c.ID))
	return c, nil
}

// Recalculate moves a done calculation back to computing with new inputs
// and queues it again.
func (s *Service) Recalculate(ctx context.Context, id string, in score.Inputs) (calculation.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return calculation.Calculation{}, ErrStopped
	}

	now := s.now()
	var previous calculation.Calculation
	c, err := s.store.Update(ctx, id, func(c *calculation.Calculation) error {
		previous = *c
		if err := c.Start(now); err != nil {
			return err
		}
		c.Inputs = in
		return nil
	})
	if err != nil {
		return calculation.Calculation{}, err
	}
	if err := s.enqueue(ctx, id, in, now); err != nil {
		_ = s.store.Put(ctx, previous)
		return calculation.Calculation{}, err
	}

	metrics.RecordCalculationSubmitted()
	return c, nil
}

func (s *Service) enqueue(ctx context.Context, id string, in score.Inputs, now time.Time) error {
	err := s.queue.Enqueue(ctx, model.Job{CalculationID: id, Inputs: in, SubmittedAt: now})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jobqueue.ErrFull):
		metrics.RecordCalculationRejected("queue_full")
	case errors.Is(err, jobqueue.ErrClosed):
		metrics.RecordCalculationRejected("closed")
	default:
		metrics.RecordCalculationRejected("cancelled")
	}
	return fmt.Errorf("enqueue calculation %s: %w", id, err)
}

// Get returns the calculation with id. Unknown ids yield repository.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (calculation.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return calculation.Calculation{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"storeCapacity":  s.storeCapacity,
		"displayDelayMs": s.displayDelay.Milliseconds(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["queueCapacity"] = s.queue.Capacity()
		stats["calculations"] = stored
		stats["idempotencyKeys"] = s.keys.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreEntries(stored)
	}
	return stats
}
