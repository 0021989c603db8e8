package settings

import (
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

type UpdateSettingsRequest struct {
	CheckInTime          string `json:"check_in_time"`
	CheckOutTime         string `json:"check_out_time"`
	GracePeriodMinutes   int    `json:"grace_period_minutes"`
	TokenRotationSeconds int    `json:"token_rotation_seconds"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidClockTime(r.CheckInTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_time",
			Message: "check_in_time must be in HH:MM format",
		})
	}
	if !validator.IsValidClockTime(r.CheckOutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_time",
			Message: "check_out_time must be in HH:MM format",
		})
	}
	if r.GracePeriodMinutes < 0 || r.GracePeriodMinutes > 240 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_period_minutes",
			Message: "grace_period_minutes must be between 0 and 240",
		})
	}
	if r.TokenRotationSeconds == 0 {
		r.TokenRotationSeconds = DefaultTokenRotationSeconds
	}
	if r.TokenRotationSeconds < 5 || r.TokenRotationSeconds > 300 {
		errs = append(errs, validator.ValidationError{
			Field:   "token_rotation_seconds",
			Message: "token_rotation_seconds must be between 5 and 300",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettingsResponse struct {
	CheckInTime          string `json:"check_in_time"`
	CheckOutTime         string `json:"check_out_time"`
	GracePeriodMinutes   int    `json:"grace_period_minutes"`
	TokenRotationSeconds int    `json:"token_rotation_seconds"`
	UpdatedAt            string `json:"updated_at,omitempty"`
}
