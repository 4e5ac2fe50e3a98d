package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

// RetentionJobs removes analysis runs that outlived the configured retention.
type RetentionJobs struct {
	analysisService attendance.AnalysisService
	retention       time.Duration
	interval        time.Duration
	now             func() time.Time
}

func NewRetentionJobs(analysisService attendance.AnalysisService, retention, interval time.Duration) *RetentionJobs {
	return &RetentionJobs{
		analysisService: analysisService,
		retention:       retention,
		interval:        interval,
		now:             time.Now,
	}
}

// RegisterJobs registers the purge job
func (j *RetentionJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(Job{
		Name:     "purge_analysis_runs",
		Interval: j.interval,
		Timeout:  j.interval / 2,
		Fn:       j.PurgeExpiredRuns,
	})
}

// PurgeExpiredRuns deletes runs created before now minus the retention window.
func (j *RetentionJobs) PurgeExpiredRuns(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	removed, err := j.analysisService.PurgeRuns(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Expired analysis runs purged", "removed", removed, "cutoff", cutoff)
	}
	return nil
}
