package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrOptimizationInProgress is returned when a period is already being
// optimised, in this process or another one
var ErrOptimizationInProgress = errors.New("optimization already in progress")

// Runner allows at most one optimisation per month within the process and
// can run them in the background
type Runner struct {
	mu     sync.Mutex
	slots  map[string]*semaphore.Weighted
	wg     sync.WaitGroup
	logger *zap.Logger
}

func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{slots: make(map[string]*semaphore.Weighted), logger: logger}
}

func (r *Runner) slot(month string) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[month]
	if !ok {
		s = semaphore.NewWeighted(1)
		r.slots[month] = s
	}
	return s
}

// Run executes fn while holding the month's slot
func (r *Runner) Run(ctx context.Context, month string, fn func(ctx context.Context) error) error {
	s := r.slot(month)
	if !s.TryAcquire(1) {
		return fmt.Errorf("%w: %s", ErrOptimizationInProgress, month)
	}
	defer s.Release(1)
	return fn(ctx)
}

// Go starts fn in the background. It fails immediately when the month is
// busy; errors from fn are logged.
func (r *Runner) Go(ctx context.Context, month string, fn func(ctx context.Context) error) error {
	s := r.slot(month)
	if !s.TryAcquire(1) {
		return fmt.Errorf("%w: %s", ErrOptimizationInProgress, month)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer s.Release(1)
		if err := fn(ctx); err != nil {
			r.logger.Error("Background optimization failed", zap.String("month", month), zap.Error(err))
		}
	}()
	return nil
}

// Busy reports whether the month's slot is held
func (r *Runner) Busy(month string) bool {
	s := r.slot(month)
	if !s.TryAcquire(1) {
		return true
	}
	s.Release(1)
	return false
}

// Wait blocks until every background run has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}
