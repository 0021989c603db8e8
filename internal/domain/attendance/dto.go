package attendance

import (
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

// ========================================
// SCAN DTOs
// ========================================

type ScanRequest struct {
	Payload  string `json:"payload"`
	DeviceID string `json:"device_id"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Payload) {
		errs = append(errs, validator.ValidationError{
			Field:   "payload",
			Message: "payload is required",
		})
	}
	if len(r.Payload) > 512 {
		errs = append(errs, validator.ValidationError{
			Field:   "payload",
			Message: "payload must not exceed 512 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ScanResponse struct {
	Action         string   `json:"action"`
	Message        string   `json:"message"`
	WorkDayID      string   `json:"work_day_id"`
	Date           string   `json:"date"`
	CheckInTime    string   `json:"check_in_time"`
	CheckOutTime   *string  `json:"check_out_time,omitempty"`
	DelayMinutes   int      `json:"delay_minutes"`
	TotalWorkHours *float64 `json:"total_work_hours,omitempty"`
	Anomaly        string   `json:"anomaly,omitempty"`
}

type IssuedTokenResponse struct {
	TokenID         string `json:"token_id"`
	Payload         string `json:"payload"`
	IssuedAt        string `json:"issued_at"`
	ValidUntil      string `json:"valid_until"`
	RotationSeconds int    `json:"rotation_seconds"`
	QRCodePNG       string `json:"qr_code_png"` // base64
}

type CountdownResponse struct {
	TokenID          string `json:"token_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type PurgeResponse struct {
	Deleted int64  `json:"deleted"`
	Before  string `json:"before"`
}

// EventTopic is the hub topic RecordedEvent values are published on.
const EventTopic = "attendance"

// RecordedEvent is broadcast to live dashboards after every successful scan.
type RecordedEvent struct {
	Action       string `json:"action"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	At           string `json:"at"`
	DelayMinutes int    `json:"delay_minutes"`
	IsLate       bool   `json:"is_late"`
}

// ========================================
// LOG DTOs
// ========================================

type AttendanceResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	EmployeeName   string   `json:"employee_name"`
	Date           string   `json:"date"`
	CheckInTime    string   `json:"check_in_time"`
	CheckOutTime   *string  `json:"check_out_time,omitempty"`
	DelayMinutes   int      `json:"delay_minutes"`
	TotalWorkHours *float64 `json:"total_work_hours,omitempty"`
	OvertimeHours  *float64 `json:"overtime_hours,omitempty"`
	Status         string   `json:"status"` // on_time or late
	IsOpen         bool     `json:"is_open"`
}

const (
	StatusOnTime = "on_time"
	StatusLate   = "late"
)

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`     // on_time, late
	OpenOnly   bool    `json:"open_only,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_time, check_out_time, delay_minutes
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit, 500)

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, []string{StatusOnTime, StatusLate}) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: on_time, late",
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "check_in_time", "check_out_time", "delay_minutes"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, check_in_time, check_out_time, delay_minutes",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MyAttendanceFilter is AttendanceFilter without the employee selector.
type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

// ForEmployee widens the filter for one employee.
func (f MyAttendanceFilter) ForEmployee(employeeID string) AttendanceFilter {
	return AttendanceFilter{
		EmployeeID: &employeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Status:     f.Status,
		Page:       f.Page,
		Limit:      f.Limit,
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
