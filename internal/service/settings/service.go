package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
)

type SettingsServiceImpl struct {
	settings.SettingsRepository
}

func NewSettingsService(settingsRepository settings.SettingsRepository) settings.SettingsService {
	return &SettingsServiceImpl{SettingsRepository: settingsRepository}
}

// GetAttendanceSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) GetAttendanceSettings(ctx context.Context) (settings.SettingsResponse, error) {
	current, err := s.SettingsRepository.Get(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsNotFound) {
			return settings.SettingsResponse{}, settings.ErrSettingsNotFound
		}
		return settings.SettingsResponse{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return mapSettingsToResponse(current), nil
}

// UpdateAttendanceSettings implements settings.SettingsService. New values
// apply from the next token rotation and the next scan.
func (s *SettingsServiceImpl) UpdateAttendanceSettings(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	if !user.CanAccess(session, user.ScreenSettings) {
		return settings.SettingsResponse{}, user.ErrInsufficientPermissions
	}

	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	saved, err := s.SettingsRepository.Upsert(ctx, settings.AttendanceSettings{
		CheckInTime:          req.CheckInTime,
		CheckOutTime:         req.CheckOutTime,
		GracePeriodMinutes:   req.GracePeriodMinutes,
		TokenRotationSeconds: req.TokenRotationSeconds,
	})
	if err != nil {
		return settings.SettingsResponse{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}

	slog.Info("attendance settings updated",
		"updated_by", session.EmployeeID,
		"check_in", saved.CheckInTime,
		"check_out", saved.CheckOutTime,
		"grace_minutes", saved.GracePeriodMinutes,
		"rotation_seconds", saved.TokenRotationSeconds,
	)
	return mapSettingsToResponse(saved), nil
}

func mapSettingsToResponse(s settings.AttendanceSettings) settings.SettingsResponse {
	resp := settings.SettingsResponse{
		CheckInTime:          s.CheckInTime,
		CheckOutTime:         s.CheckOutTime,
		GracePeriodMinutes:   s.GracePeriodMinutes,
		TokenRotationSeconds: s.TokenRotationSeconds,
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
