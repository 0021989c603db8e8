package settings

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySettingsRepo struct {
	current *settings.AttendanceSettings
}

func (m *memorySettingsRepo) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	if m.current == nil {
		return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
	}
	return *m.current, nil
}

func (m *memorySettingsRepo) Upsert(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	s.UpdatedAt = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	m.current = &s
	return s, nil
}

func TestSettingsService_GetBeforeFirstWrite(t *testing.T) {
	svc := NewSettingsService(&memorySettingsRepo{})

	_, err := svc.GetAttendanceSettings(context.Background())
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)
}

func TestSettingsService_Update(t *testing.T) {
	repo := &memorySettingsRepo{}
	svc := NewSettingsService(repo)
	req := settings.UpdateSettingsRequest{CheckInTime: "08:30", CheckOutTime: "17:30", GracePeriodMinutes: 15}

	_, err := svc.UpdateAttendanceSettings(user.WithSession(context.Background(), user.Session{EmployeeID: "hr-1", Role: user.RoleHR}), req)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	adminCtx := user.WithSession(context.Background(), user.Session{EmployeeID: "admin-1", Role: user.RoleAdmin})
	resp, err := svc.UpdateAttendanceSettings(adminCtx, req)
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultTokenRotationSeconds, resp.TokenRotationSeconds)
	assert.Equal(t, "2025-01-06T08:00:00Z", resp.UpdatedAt)

	got, err := svc.GetAttendanceSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "08:30", got.CheckInTime)
	assert.Equal(t, 15, got.GracePeriodMinutes)

	_, err = svc.UpdateAttendanceSettings(adminCtx, settings.UpdateSettingsRequest{CheckInTime: "8", CheckOutTime: "17:30"})
	assert.Error(t, err)
}
