package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memorySettings struct {
	stored *settings.AttendanceSettings
	writes int
}

func (m *memorySettings) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	if m.stored == nil {
		return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
	}
	return *m.stored, nil
}

func (m *memorySettings) Upsert(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	m.stored = &s
	m.writes++
	return s, nil
}

func TestSeedSettings(t *testing.T) {
	repo := &memorySettings{}

	seeded, err := SeedSettings(context.Background(), repo)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, "08:00", repo.stored.CheckInTime)

	seeded, err = SeedSettings(context.Background(), repo)
	require.NoError(t, err)
	assert.False(t, seeded, "existing settings are never overwritten")
	assert.Equal(t, 1, repo.writes)
}

func TestDefaultAttendanceSettings_AreValid(t *testing.T) {
	d := DefaultAttendanceSettings()
	req := settings.UpdateSettingsRequest{
		CheckInTime:          d.CheckInTime,
		CheckOutTime:         d.CheckOutTime,
		GracePeriodMinutes:   d.GracePeriodMinutes,
		TokenRotationSeconds: d.TokenRotationSeconds,
	}
	assert.NoError(t, req.Validate())
}

func TestNewAccount(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC)
	acc, err := NewAccount(Account{EmployeeCode: "ADM001", FullName: "Site Admin", Role: user.RoleAdmin, Password: "s3cret!"}, now, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, employee.StatusActive, acc.Status)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), acc.HireDate)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("s3cret!")))

	_, err = NewAccount(Account{EmployeeCode: "X01", Role: "owner", Password: "s3cret!"}, now, bcrypt.MinCost)
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	_, err = NewAccount(Account{EmployeeCode: "X01", Role: user.RoleHR, Password: "123"}, now, bcrypt.MinCost)
	assert.ErrorIs(t, err, employee.ErrPasswordTooShort)
}
