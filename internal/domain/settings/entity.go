package settings

import (
	"fmt"
	"time"
)

const (
	DefaultTokenRotationSeconds = 10
	ClockLayout                 = "15:04"
)

// AttendanceSettings is the single global attendance configuration row.
type AttendanceSettings struct {
	CheckInTime          string // HH:MM
	CheckOutTime         string // HH:MM
	GracePeriodMinutes   int
	TokenRotationSeconds int
	UpdatedAt            time.Time
}

// RotationInterval falls back to the default when the stored value is unusable.
func (s AttendanceSettings) RotationInterval() time.Duration {
	if s.TokenRotationSeconds <= 0 {
		return DefaultTokenRotationSeconds * time.Second
	}
	return time.Duration(s.TokenRotationSeconds) * time.Second
}

// At returns the instant on day (interpreted in loc) at the HH:MM clock value.
func At(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
