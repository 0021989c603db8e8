package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
)

// RevocationStore is the persisted side of logout revocations.
type RevocationStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MaintenanceJobs struct {
	attendanceSvc attendance.AttendanceService
	jwtService    jwt.Service
	revocations   RevocationStore
	interval      time.Duration
	now           func() time.Time
}

func NewMaintenanceJobs(
	attendanceSvc attendance.AttendanceService,
	jwtService jwt.Service,
	revocations RevocationStore,
	interval time.Duration,
) *MaintenanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MaintenanceJobs{
		attendanceSvc: attendanceSvc,
		jwtService:    jwtService,
		revocations:   revocations,
		interval:      interval,
		now:           time.Now,
	}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{Name: "purge_stale_attendance_tokens", Interval: j.interval, Timeout: time.Minute, Fn: j.PurgeStaleTokens})
	scheduler.AddJob(Job{Name: "prune_revoked_access_tokens", Interval: j.interval, Timeout: time.Minute, Fn: j.PruneRevokedTokens})
}

// PurgeStaleTokens removes attendance tokens issued before today.
func (j *MaintenanceJobs) PurgeStaleTokens(ctx context.Context) error {
	res, err := j.attendanceSvc.PurgeStaleTokens(ctx)
	if err != nil {
		return fmt.Errorf("purge stale tokens: %w", err)
	}
	if res.Deleted > 0 {
		slog.Info("Cron: purged stale attendance tokens", "deleted", res.Deleted, "before", res.Before)
	}
	return nil
}

// PruneRevokedTokens forgets logout revocations whose tokens have expired.
func (j *MaintenanceJobs) PruneRevokedTokens(ctx context.Context) error {
	now := j.now()
	pruned := j.jwtService.PruneRevoked(now)

	if j.revocations == nil {
		return nil
	}
	deleted, err := j.revocations.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("delete expired revocations: %w", err)
	}
	slog.Debug("Cron: pruned revoked tokens", "memory", pruned, "stored", deleted)
	return nil
}
