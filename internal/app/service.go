// Package service wires the screening pipeline together: dedupe, queue,
// worker pool, assessment engine, and the caseload store.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/google/uuid"

	attemptqueue "github.com/edulens/screening/internal/adapters/mq/queue"
	workerpool "github.com/edulens/screening/internal/adapters/mq/worker"
	repository "github.com/edulens/screening/internal/adapters/repository"
	"github.com/edulens/screening/internal/domain/assess"
	"github.com/edulens/screening/internal/domain/dedupe"
	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/internal/domain/scoring"
	"github.com/edulens/screening/pkg/logger"
	"github.com/edulens/screening/pkg/metrics"
)

// Sentinel kinds for submission errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrDuplicateAttempt = errors.New("duplicate attempt")
	ErrQueueFull        = errors.New("attempt queue full")
)

// Service implements the screening pipeline for batch and synchronous use.
type Service struct {
	mu sync.RWMutex

	caseload  repository.Caseload
	deduper   dedupe.Deduper
	queue     attemptqueue.Queue
	predictor *assess.Predictor
	pool      *workerpool.Pool

	workerCount int
	queueSize   int
	historySize int
	thresholds  scoring.Thresholds
	seed        int64

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

// WithQueueSize sets the capacity of the attempt queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithHistorySize sets the size of the attempt-ID dedupe history.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithThresholds sets the risk-tier thresholds used by the scorer.
func WithThresholds(t scoring.Thresholds) Option {
	return func(s *Service) {
		if t.Valid() {
			s.thresholds = t
		}
	}
}

// WithSeed sets the model weight seed.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		historySize: 50_000,
		thresholds:  scoring.DefaultThresholds(),
		seed:        scoring.DefaultSeed,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting screening service...")

	s.caseload = repository.NewTreapStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.historySize),
	)
	s.queue = attemptqueue.NewInMemoryQueue(
		attemptqueue.WithCapacity(s.queueSize),
	)

	scorer := scoring.NewNeuralScorer(
		scoring.WithSeed(s.seed),
		scoring.WithThresholds(s.thresholds),
	)
	s.predictor = assess.New(
		assess.WithScorer(scorer),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.predictor, s.caseload)
	s.pool.Start(ctx)

	metrics.UpdateQueueCapacity(s.queueSize)

	s.started = true
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("historySize", s.historySize),
	)

	return nil
}

// Stop gracefully shuts down the service. The attempt queue is closed
// first, so workers drain everything already submitted before exiting.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping screening service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// Submit enqueues an attempt for asynchronous screening. A missing
// AttemptID gets a generated UUID; the assigned ID is returned so the
// caller can correlate the outcome. Duplicate attempt IDs are rejected.
func (s *Service) Submit(ctx context.Context, attempt model.Attempt) (string, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	if attempt.AttemptID == "" {
		attempt.AttemptID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, attempt.AttemptID) {
		metrics.RecordAttemptDuplicate()
		s.logger.Debug(ctx, "duplicate attempt skipped",
			logger.String("attemptID", attempt.AttemptID),
			logger.String("studentID", attempt.StudentID),
		)
		return attempt.AttemptID, ErrDuplicateAttempt
	}

	if !s.queue.Enqueue(ctx, attempt) {
		// Allow a retry of the same attempt once there is room again.
		s.deduper.Unrecord(ctx, attempt.AttemptID)
		return attempt.AttemptID, ErrQueueFull
	}

	return attempt.AttemptID, nil
}

// Assess screens an attempt synchronously, bypassing the queue. The
// outcome is still deduplicated and recorded in the caseload.
func (s *Service) Assess(ctx context.Context, attempt model.Attempt) (model.Summary, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.Summary{}, ErrNotStarted
	}

	if attempt.AttemptID == "" {
		attempt.AttemptID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, attempt.AttemptID) {
		metrics.RecordAttemptDuplicate()
		return model.Summary{}, ErrDuplicateAttempt
	}

	summary := s.predictor.Comprehensive(ctx, attempt.Sessions)
	if _, err := s.caseload.UpdateRisk(ctx, attempt.StudentID, summary); err != nil {
		return model.Summary{}, err
	}
	metrics.RecordAttemptProcessed()

	return summary, nil
}

// Watchlist returns the n highest-risk students. It stays readable after
// Stop so drained results can still be reported.
func (s *Service) Watchlist(ctx context.Context, n int) ([]repository.Entry, error) {
	s.mu.RLock()
	caseload := s.caseload
	s.mu.RUnlock()
	if caseload == nil {
		return nil, ErrNotStarted
	}
	return caseload.TopN(ctx, n)
}

// StudentRank returns the caseload rank and risk for a student.
func (s *Service) StudentRank(ctx context.Context, studentID string) (repository.Entry, error) {
	s.mu.RLock()
	caseload := s.caseload
	s.mu.RUnlock()
	if caseload == nil {
		return repository.Entry{}, ErrNotStarted
	}
	return caseload.Rank(ctx, studentID)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"historySize": s.historySize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		tracked := s.caseload.Count(ctx)

		stats["queueLength"] = queueLen
		stats["studentsTracked"] = tracked
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCaseloadSize(tracked)
	}

	return stats
}
