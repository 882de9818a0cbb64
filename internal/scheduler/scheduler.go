// Package scheduler runs a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with a single job.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *slog.Logger
}

// New validates spec and returns a scheduler in loc (UTC when nil).
// A run that is still going when the next one is due is skipped.
func New(spec string, loc *time.Location, job Job, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler: job is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		spec:   spec,
		job:    job,
		logger: logger,
	}, nil
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		start := time.Now()
		s.logger.Info("scheduled run started", "schedule", s.spec)
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "err", err)
			return
		}
		s.logger.Info("scheduled run finished", "took", time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("add schedule: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.spec, "next", s.Next())

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// Next returns the next activation time, or the zero time before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
