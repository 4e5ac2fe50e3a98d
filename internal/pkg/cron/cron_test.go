package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

type stubAnalysisService struct {
	attendance.AnalysisService
	cutoffs []time.Time
	removed int64
	err     error
}

func (s *stubAnalysisService) PurgeRuns(_ context.Context, olderThan time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, olderThan)
	return s.removed, s.err
}

func TestScheduler_AddJobValidation(t *testing.T) {
	s := NewScheduler(context.Background())
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.AddJob(Job{Interval: time.Minute, Fn: noop}))
	assert.Error(t, s.AddJob(Job{Name: "zero", Fn: noop}))
	assert.Error(t, s.AddJob(Job{Name: "nil", Interval: time.Minute}))
	require.NoError(t, s.AddJob(Job{Name: "ok", Interval: time.Minute, Fn: noop}))
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler(context.Background())
	var calls atomic.Int32
	boom := errors.New("boom")

	require.NoError(t, s.AddJob(Job{Name: "first", Interval: time.Minute, Fn: func(context.Context) error {
		calls.Add(1)
		return boom
	}}))
	require.NoError(t, s.AddJob(Job{Name: "second", Interval: time.Minute, Fn: func(context.Context) error {
		calls.Add(1)
		return nil
	}}))

	err := s.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_TimeoutBoundsExecution(t *testing.T) {
	s := NewScheduler(context.Background())
	require.NoError(t, s.AddJob(Job{
		Name:     "slow",
		Interval: time.Minute,
		Timeout:  10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(context.Background())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob(Job{Name: "tick", Interval: time.Hour, Fn: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}}))

	s.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	assert.Error(t, s.AddJob(Job{Name: "late", Interval: time.Minute, Fn: func(context.Context) error { return nil }}))
}

func TestRetentionJobs_PurgeExpiredRuns(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	svc := &stubAnalysisService{removed: 3}
	jobs := NewRetentionJobs(svc, 48*time.Hour, time.Hour)
	jobs.now = func() time.Time { return now }

	s := NewScheduler(context.Background())
	require.NoError(t, jobs.RegisterJobs(s))
	require.NoError(t, s.RunOnce(context.Background()))

	require.Len(t, svc.cutoffs, 1)
	assert.Equal(t, now.Add(-48*time.Hour), svc.cutoffs[0])
}

func TestRetentionJobs_PropagatesError(t *testing.T) {
	svc := &stubAnalysisService{err: errors.New("db down")}
	jobs := NewRetentionJobs(svc, time.Hour, time.Hour)

	err := jobs.PurgeExpiredRuns(context.Background())
	assert.EqualError(t, err, "db down")
}
