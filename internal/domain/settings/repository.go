package settings

import "context"

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when the row has never been written.
	Get(ctx context.Context) (AttendanceSettings, error)
	Upsert(ctx context.Context, s AttendanceSettings) (AttendanceSettings, error)
}
