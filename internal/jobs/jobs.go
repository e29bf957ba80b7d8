// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jobs runs the periodic background sweeps.

Every instance ticks every job, but a run only proceeds while holding the job's
distributed lock, so at most one instance sweeps at a time. A tick that finds
the lock taken is skipped, not queued.
*/
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yomira-cms/internal/platform/metrics"
	"github.com/taibuivan/yomira-cms/internal/platform/redis"
)

// Locker serializes job runs across instances.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error
}

// Job is a named task repeated at a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner ticks a set of jobs until its context ends.
type Runner struct {
	locker Locker
	logger *slog.Logger
	jobs   []Job
	wg     sync.WaitGroup
}

// NewRunner constructs a [Runner].
func NewRunner(locker Locker, logger *slog.Logger, jobs ...Job) *Runner {
	return &Runner{locker: locker, logger: logger, jobs: jobs}
}

// Start launches one goroutine per job. Jobs with a non-positive interval are
// disabled.
func (runner *Runner) Start(ctx context.Context) {
	for _, job := range runner.jobs {
		if job.Interval <= 0 {
			runner.logger.Info("job_disabled", slog.String("job", job.Name))
			continue
		}

		runner.wg.Add(1)
		go func() {
			defer runner.wg.Done()
			runner.loop(ctx, job)
		}()
	}
}

// Wait blocks until every job goroutine has returned.
func (runner *Runner) Wait() {
	runner.wg.Wait()
}

/*
RunOnce performs a single locked run of job.

Returns:
  - bool: false when another instance held the lock
  - error: whatever the job returned
*/
func (runner *Runner) RunOnce(ctx context.Context, job Job) (bool, error) {
	started := time.Now()

	err := runner.locker.WithLock(ctx, job.Name, job.Interval, job.Run)
	switch {
	case errors.Is(err, redis.ErrLockHeld):
		metrics.JobRuns.WithLabelValues(job.Name, metrics.OutcomeSkipped).Inc()
		runner.logger.DebugContext(ctx, "job_skipped", slog.String("job", job.Name))
		return false, nil

	case err != nil:
		metrics.JobRuns.WithLabelValues(job.Name, metrics.OutcomeFailed).Inc()
		metrics.JobDuration.WithLabelValues(job.Name).Observe(time.Since(started).Seconds())
		return true, err
	}

	metrics.JobRuns.WithLabelValues(job.Name, metrics.OutcomeOK).Inc()
	metrics.JobDuration.WithLabelValues(job.Name).Observe(time.Since(started).Seconds())
	return true, nil
}

func (runner *Runner) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	runner.logger.Info("job_started",
		slog.String("job", job.Name),
		slog.Duration("interval", job.Interval),
	)

	for {
		select {
		case <-ticker.C:
			if _, err := runner.RunOnce(ctx, job); err != nil {
				runner.logger.ErrorContext(ctx, "job_failed",
					slog.String("job", job.Name),
					slog.Any("error", err),
				)
			}
		case <-ctx.Done():
			runner.logger.Info("job_stopped", slog.String("job", job.Name))
			return
		}
	}
}
