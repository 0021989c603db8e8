package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Scan rejections
	case errors.Is(err, attendance.ErrInvalidFormat):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrTokenNotFound):
		NotFound(w, "Attendance code not found")
	case errors.Is(err, attendance.ErrTokenForged):
		Forbidden(w, "Attendance code is not authentic")
	case errors.Is(err, attendance.ErrDeviceMismatch):
		Forbidden(w, "Scan came from an unregistered device")
	case errors.Is(err, attendance.ErrTokenExpired):
		Gone(w, "Attendance code has expired, scan the current one")

	// Recording
	case errors.Is(err, attendance.ErrUnknownEmployee):
		NotFound(w, "No employee profile for this account")
	case errors.Is(err, attendance.ErrSettingsMissing):
		InternalServerError(w, "Attendance settings are not configured")
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Conflict(w, "Attendance for today is already completed")
	case errors.Is(err, attendance.ErrCheckInConflict):
		Conflict(w, "A check-in for today was already recorded")
	case errors.Is(err, attendance.ErrWorkDayNotFound):
		NotFound(w, "Attendance record not found")
	case attendance.IsRetryable(err):
		slog.Warn("transient persistence failure", "error", err)
		ServiceUnavailable(w, "Attendance store is temporarily unavailable, try again")

	// Auth & session
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, user.ErrNoSession):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token has been revoked")
	case errors.Is(err, auth.ErrEmployeeInactive):
		Forbidden(w, "Employee account is inactive")
	case errors.Is(err, auth.ErrDeviceMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrDeviceAlreadyBound):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrCannotDeleteSelf),
		errors.Is(err, employee.ErrCannotChangeOwnRole),
		errors.Is(err, employee.ErrInvalidCurrentPassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrHRCannotGrantAdmin):
		Forbidden(w, err.Error())

	// Settings & payroll
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Attendance settings not found")
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
		Conflict(w, "Payroll record already paid")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
