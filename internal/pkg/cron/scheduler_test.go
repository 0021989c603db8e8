package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnceCountsFailures(t *testing.T) {
	s := NewScheduler()
	var ran []string
	s.AddJob(Job{Name: "ok", Interval: time.Hour, Fn: func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	}})
	s.AddJob(Job{Name: "broken", Interval: time.Hour, Fn: func(ctx context.Context) error {
		ran = append(ran, "broken")
		return errors.New("boom")
	}})

	assert.Equal(t, 1, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"ok", "broken"}, ran)
}

func TestScheduler_TimeoutBoundsRun(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "slow", Interval: time.Hour, Timeout: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	assert.Equal(t, 1, s.RunOnce(context.Background()))
}

func TestScheduler_StartRunsImmediatelyAndStopWaits(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	started := make(chan struct{}, 1)
	s.AddJob(Job{Name: "tick", Interval: time.Hour, Fn: func(ctx context.Context) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	}})

	s.Start()
	s.Start() // second call is a no-op

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())

	// late registrations are ignored
	s.AddJob(Job{Name: "late", Interval: time.Hour, Fn: func(ctx context.Context) error { return nil }})
	assert.Len(t, s.jobs, 1)
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	purged int64
	err    error
}

func (f *fakeAttendanceService) PurgeStaleTokens(ctx context.Context) (attendance.PurgeResponse, error) {
	if f.err != nil {
		return attendance.PurgeResponse{}, f.err
	}
	return attendance.PurgeResponse{Deleted: f.purged, Before: "2025-01-06T00:00:00+07:00"}, nil
}

type fakeRevocations struct {
	calls int
}

func (f *fakeRevocations) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	return 2, nil
}

func TestMaintenanceJobs(t *testing.T) {
	svc := &fakeAttendanceService{purged: 12}
	jwtSvc := jwt.NewJWTService("secret", "1h", time.Minute)
	revocations := &fakeRevocations{}

	jobs := NewMaintenanceJobs(svc, jwtSvc, revocations, 0)
	now := time.Now()
	jobs.now = func() time.Time { return now }
	jwtSvc.RevokeToken("old", now.Add(-time.Second))

	s := NewScheduler()
	jobs.RegisterJobs(s)
	require.Len(t, s.jobs, 2)
	assert.Equal(t, time.Hour, s.jobs[0].Interval)

	assert.Equal(t, 0, s.RunOnce(context.Background()))
	assert.Equal(t, 1, revocations.calls)
	assert.False(t, jwtSvc.IsTokenRevoked("old"))

	svc.err = errors.New("store down")
	assert.Error(t, jobs.PurgeStaleTokens(context.Background()))
}
