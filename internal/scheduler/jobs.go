package scheduler

import (
	"context"
	"fmt"
	"time"

	"gymdesk/membership-app/internal/logger"
)

const (
	JobStatsRefresh = "stats-refresh"
	JobSessionPurge = "session-purge"

	jobTimeout = 2 * time.Minute
)

// StatsRefresher reloads the cached dashboard statistics from the backend.
type StatsRefresher interface {
	RefreshSnapshots(ctx context.Context) error
}

// SessionPurger removes expired console sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// JobObserver records job outcomes.
type JobObserver interface {
	ObserveJob(job string, elapsed time.Duration, err error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	stats    StatsRefresher
	sessions SessionPurger
	observer JobObserver
	log      *logger.Logger
}

func NewJobs(stats StatsRefresher, sessions SessionPurger, observer JobObserver, log *logger.Logger) *Jobs {
	if log == nil {
		log = logger.Nop()
	}
	return &Jobs{
		stats:    stats,
		sessions: sessions,
		observer: observer,
		log:      log,
	}
}

// RefreshStats warms the statistics snapshot used when the backend is down.
func (j *Jobs) RefreshStats() {
	j.run(JobStatsRefresh, func(ctx context.Context) error {
		return j.stats.RefreshSnapshots(ctx)
	})
}

// PurgeSessions deletes expired sessions the TTL monitor has not reached yet.
func (j *Jobs) PurgeSessions() {
	j.run(JobSessionPurge, func(ctx context.Context) error {
		removed, err := j.sessions.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			j.log.Info(j.log.WithField(ctx, "removed", removed), "purged expired sessions")
		}
		return nil
	})
}

func (j *Jobs) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = j.log.WithField(ctx, "job", name)

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if j.observer != nil {
		j.observer.ObserveJob(name, elapsed, err)
	}
	if err != nil {
		j.log.Error(ctx, fmt.Sprintf("job %s failed", name), err)
		return
	}
	j.log.Debug(ctx, fmt.Sprintf("job %s finished in %s", name, elapsed))
}
