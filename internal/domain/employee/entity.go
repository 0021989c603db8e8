package employee

import (
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Employee is both the HR record and the login account of a person.
type Employee struct {
	ID                        string
	EmployeeCode              string
	FullName                  string
	PasswordHash              string
	Role                      user.Role
	Permissions               []user.Screen
	ContractType              ContractType
	CustomCheckInTime         *string // HH:MM, part-time only
	CustomCheckOutTime        *string // HH:MM, part-time only
	HireDate                  time.Time
	Status                    Status
	BaseSalary                decimal.Decimal
	DeviceVerificationEnabled bool
	DeviceID                  *string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
	DeletedAt                 *time.Time
}

type ContractType string

const (
	ContractFullTime ContractType = "full-time"
	ContractPartTime ContractType = "part-time"
)

func (c ContractType) IsValid() bool {
	return c == ContractFullTime || c == ContractPartTime
}

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusOnLeave || s == StatusInactive
}

// ScheduledCheckIn returns the employee's own start time when the contract
// allows one, otherwise fallback.
func (e Employee) ScheduledCheckIn(fallback string) string {
	if e.ContractType == ContractPartTime && e.CustomCheckInTime != nil && *e.CustomCheckInTime != "" {
		return *e.CustomCheckInTime
	}
	return fallback
}

// ScheduledCheckOut mirrors ScheduledCheckIn for the end of the day.
func (e Employee) ScheduledCheckOut(fallback string) string {
	if e.ContractType == ContractPartTime && e.CustomCheckOutTime != nil && *e.CustomCheckOutTime != "" {
		return *e.CustomCheckOutTime
	}
	return fallback
}

// DeviceMatches reports whether a scan from deviceID may act for this employee.
func (e Employee) DeviceMatches(deviceID string) bool {
	if !e.DeviceVerificationEnabled {
		return true
	}
	if e.DeviceID == nil || *e.DeviceID == "" {
		return false
	}
	return *e.DeviceID == deviceID
}
