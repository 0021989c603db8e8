package settings

import "context"

type SettingsService interface {
	GetAttendanceSettings(ctx context.Context) (SettingsResponse, error)
	UpdateAttendanceSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}
