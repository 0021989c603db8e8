package auth

import (
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	EmployeeCode string `json:"employee_code"`
	Password     string `json:"password"`
	// DeviceID identifies the phone the employee signs in from. It is bound on
	// first login when device verification is enabled for the employee.
	DeviceID string `json:"device_id"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	} else if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must be 3-32 letters, digits, '.', '_' or '-'",
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 255 characters",
		})
	}

	if len(r.DeviceID) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "device_id",
			Message: "device_id must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TokenResponse struct {
	AccessToken          string      `json:"access_token"`
	AccessTokenExpiresIn int64       `json:"access_token_expires_in"`
	Profile              ProfileInfo `json:"profile"`
}

// ProfileInfo is what the dashboard needs to render navigation for the session
type ProfileInfo struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeCode string   `json:"employee_code"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Screens      []string `json:"screens"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
