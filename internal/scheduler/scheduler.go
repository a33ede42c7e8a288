// Package scheduler runs the console's background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"

	"gymdesk/membership-app/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

// Schedules maps each job to its cron spec. An empty spec disables the job.
type Schedules struct {
	StatsRefresh string
	SessionPurge string
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	jobs      *Jobs
	log       *logger.Logger
	schedules Schedules
}

func New(jobs *Jobs, log *logger.Logger, schedules Schedules) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log))))

	return &Scheduler{
		cron:      c,
		jobs:      jobs,
		log:       log,
		schedules: schedules,
	}
}

// Start registers the jobs and starts the cron scheduler. Jobs whose spec
// fails to parse are reported together; the valid ones still run.
func (s *Scheduler) Start() error {
	ctx := context.Background()
	var errs error

	register := func(name, spec string, fn func()) {
		if spec == "" {
			return
		}
		if _, err := s.cron.AddFunc(spec, fn); err != nil {
			s.log.Error(ctx, fmt.Sprintf("failed to schedule %s job", name), err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		s.log.Info(s.log.WithField(ctx, "schedule", spec), fmt.Sprintf("scheduled %s job", name))
	}

	register(JobStatsRefresh, s.schedules.StatsRefresh, s.jobs.RefreshStats)
	register(JobSessionPurge, s.schedules.SessionPurge, s.jobs.PurgeSessions)

	s.cron.Start()
	return errs
}

// Stop gracefully stops the cron scheduler. The returned context is done once
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
