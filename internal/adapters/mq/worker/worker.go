// Package worker runs the screening pipeline: workers drain the attempt
// queue, assess each attempt across its submitted domains, and record the
// outcome in the caseload.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/pkg/logger"
	"github.com/edulens/screening/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Attempt aliases the shared attempt type workers read off the queue.
type Attempt = model.Attempt

// Assessor produces a screening summary for an attempt's sessions.
type Assessor interface {
	Comprehensive(ctx context.Context, sessions map[model.Domain]map[string]any) model.Summary
}

// Caseload records per-student screening outcomes.
type Caseload interface {
	UpdateRisk(ctx context.Context, studentID string, summary model.Summary) (bool, error)
}

// Queue defines how workers receive attempts.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Attempt
}

// Worker processes attempts until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing attempts.
type InMemoryWorker struct {
	queue    Queue
	assessor Assessor
	caseload Caseload
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, assessor Assessor, caseload Caseload, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		assessor: assessor,
		caseload: caseload,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	attempts := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case attempt, ok := <-attempts:
			if !ok {
				return
			}
			if err := w.processAttempt(ctx, attempt); err != nil {
				w.logger.Error(ctx, "error processing attempt", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processAttempt runs the full assessment for one attempt and records the
// outcome in the caseload.
func (w *InMemoryWorker) processAttempt(ctx context.Context, attempt Attempt) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	summary := w.assessor.Comprehensive(ctx, attempt.Sessions)

	degraded := false
	for _, pred := range summary.Predictions {
		if pred.Degraded() {
			degraded = true
			break
		}
	}

	if _, err := w.caseload.UpdateRisk(ctx, attempt.StudentID, summary); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "caseload_error")
		w.logger.Error(ctx, "caseload update failed",
			logger.String("attemptID", attempt.AttemptID),
			logger.String("studentID", attempt.StudentID),
			logger.Error(err),
		)
		return fmt.Errorf("caseload update for attempt %s: %w", attempt.AttemptID, err)
	}

	metrics.RecordAttemptProcessed()
	if degraded {
		metrics.RecordAttemptDegraded()
	}

	w.logger.Debug(ctx, "attempt screened",
		logger.String("attemptID", attempt.AttemptID),
		logger.String("studentID", attempt.StudentID),
		logger.String("overallRisk", string(summary.OverallRiskLevel)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	assessor Assessor
	caseload Caseload

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount falls back
// to a CPU-derived default.
func NewPool(workerCount int, queue Queue, assessor Assessor, caseload Caseload) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		assessor: assessor,
		caseload: caseload,
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			assessor,
			caseload,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size reports the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		select {
		case <-worker.shutdown:
		default:
			close(worker.shutdown)
		}
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}

	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue and waits for all workers to drain in-flight
// attempts.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
