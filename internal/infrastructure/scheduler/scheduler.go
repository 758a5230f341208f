package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/househero/backend/internal/domain/payment"
	"github.com/househero/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EscrowSource lists payments still held after their job was completed
type EscrowSource interface {
	FindEscrowedForCompletedJobs(ctx context.Context, limit int) ([]payment.Payment, error)
}

// Releaser releases a single escrowed payment
type Releaser interface {
	AutoRelease(ctx context.Context, paymentID int64) error
}

// SweepResult summarises one pass over the escrow backlog
type SweepResult struct {
	Found    int
	Released int
	Failed   int
}

// ReleaseSweeper periodically releases escrowed payments whose job
// completed but whose release did not happen at confirmation time.
type ReleaseSweeper struct {
	config   config.SchedulerConfig
	source   EscrowSource
	releaser Releaser
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastSweep SweepResult
}

// NewReleaseSweeper creates a new sweeper
func NewReleaseSweeper(cfg config.SchedulerConfig, source EscrowSource, releaser Releaser, logger *zap.Logger) (*ReleaseSweeper, error) {
	if cfg.Interval <= 0 || cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: interval and batch size must be positive", ErrInvalidConfig)
	}
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &ReleaseSweeper{
		config:   cfg,
		source:   source,
		releaser: releaser,
		logger:   logger,
	}, nil
}

// Start starts the sweep loop. Calling Start twice is a no-op.
func (s *ReleaseSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.isRunning = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.Info("Release sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("workers", s.config.MaxConcurrentJobs),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight sweep to finish
func (s *ReleaseSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Release sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Release sweeper stop timed out")
		return ctx.Err()
	}
}

// LastSweep returns the result of the most recent sweep
func (s *ReleaseSweeper) LastSweep() SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSweep
}

func (s *ReleaseSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Release sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep releases one batch of escrowed payments. Individual failures do
// not stop the batch; they are counted and reported as ErrSweepFailed.
func (s *ReleaseSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	payments, err := s.source.FindEscrowedForCompletedJobs(ctx, s.config.BatchSize)
	if err != nil {
		return result, fmt.Errorf("list escrowed payments: %w", err)
	}
	result.Found = len(payments)
	if result.Found == 0 {
		s.record(result)
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentJobs)
	for _, p := range payments {
		id := p.ID
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(gctx, s.config.JobTimeout)
			defer cancel()

			err := s.releaser.AutoRelease(jobCtx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.logger.Error("Failed to release escrowed payment",
					zap.Int64("payment_id", id),
					zap.Error(err),
				)
				return nil
			}
			result.Released++
			return nil
		})
	}
	_ = g.Wait()

	s.record(result)
	s.logger.Info("Release sweep finished",
		zap.Int("found", result.Found),
		zap.Int("released", result.Released),
		zap.Int("failed", result.Failed),
	)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d payments", ErrSweepFailed, result.Failed, result.Found)
	}
	return result, nil
}

func (s *ReleaseSweeper) record(r SweepResult) {
	s.mu.Lock()
	s.lastSweep = r
	s.mu.Unlock()
}
