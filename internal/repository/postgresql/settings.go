package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

// Get implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT check_in_time, check_out_time, grace_period_minutes, token_rotation_seconds, updated_at
		FROM attendance_settings
		WHERE id = 1
	`
	var s settings.AttendanceSettings
	err := q.QueryRow(ctx, query).Scan(&s.CheckInTime, &s.CheckOutTime, &s.GracePeriodMinutes, &s.TokenRotationSeconds, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
		}
		return settings.AttendanceSettings{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return s, nil
}

// Upsert implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Upsert(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_settings (id, check_in_time, check_out_time, grace_period_minutes, token_rotation_seconds, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			check_in_time = EXCLUDED.check_in_time,
			check_out_time = EXCLUDED.check_out_time,
			grace_period_minutes = EXCLUDED.grace_period_minutes,
			token_rotation_seconds = EXCLUDED.token_rotation_seconds,
			updated_at = NOW()
		RETURNING check_in_time, check_out_time, grace_period_minutes, token_rotation_seconds, updated_at
	`
	var saved settings.AttendanceSettings
	err := q.QueryRow(ctx, query, s.CheckInTime, s.CheckOutTime, s.GracePeriodMinutes, s.TokenRotationSeconds).
		Scan(&saved.CheckInTime, &saved.CheckOutTime, &saved.GracePeriodMinutes, &saved.TokenRotationSeconds, &saved.UpdatedAt)
	if err != nil {
		return settings.AttendanceSettings{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}
	return saved, nil
}
