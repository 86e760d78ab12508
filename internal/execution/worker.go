package execution

import (
	"context"
	"sync"
	"time"

	"bugtrack/internal/domain"
	"bugtrack/internal/ui"
)

// WorkerPool manages a pool of workers for parallel outcome evaluation
type WorkerPool struct {
	workers   int
	runner    *Runner
	scheduler Scheduler
	progress  *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runner *Runner, scheduler Scheduler) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if scheduler == nil {
		scheduler = NewLineageScheduler()
	}
	return &WorkerPool{
		workers:   workers,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Execute evaluates outcomes on the workers. Each worker handles its bucket
// sequentially. Once ctx is done the remaining outcomes are reported as
// failed decisions. Decisions come back in input order.
func (wp *WorkerPool) Execute(ctx context.Context, outcomes []domain.TestOutcome) ([]domain.Decision, time.Duration, error) {
	if len(outcomes) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()
	workerCount := wp.workers
	if workerCount > len(outcomes) {
		workerCount = len(outcomes)
	}
	distribution := wp.scheduler.Schedule(outcomes, workerCount)

	decisions := make([]domain.Decision, len(outcomes))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i, bucket := range distribution {
		if len(bucket) == 0 {
			continue
		}
		wg.Add(1)
		go func(workerID int, bucket []int) {
			defer wg.Done()
			for _, idx := range bucket {
				decision := wp.runner.Run(ctx, outcomes[idx], workerID)
				mu.Lock()
				decisions[idx] = decision
				if wp.progress != nil {
					wp.progress.Record(decision)
				}
				mu.Unlock()
			}
		}(i+1, bucket)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	return decisions, time.Since(startTime), ctx.Err()
}

var _ Executor = (*WorkerPool)(nil)
