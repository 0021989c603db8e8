package attendance

import (
	"time"
)

// Token is one rotation of the proof-of-presence code. Tokens are only ever
// created, never updated.
type Token struct {
	ID         string
	IssuedAt   time.Time
	Secret     string
	ValidUntil time.Time
}

// AcceptsAt reports whether the token is still inside its validity window.
func (t Token) AcceptsAt(now time.Time) bool {
	return now.Before(t.ValidUntil)
}

// IssuedToken is what a display renders for one rotation.
type IssuedToken struct {
	Token           Token
	Payload         string
	RotationSeconds int
	QRCodePNG       []byte
}

// WorkDay is the attendance record of one employee for one calendar day.
// At most one exists per (EmployeeID, Date); once CheckOutTime is set it is closed.
type WorkDay struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	CheckInTime    time.Time
	CheckOutTime   *time.Time
	DelayMinutes   int
	TotalWorkHours float64
	OvertimeHours  float64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined
	EmployeeName *string
}

func (w WorkDay) IsClosed() bool {
	return w.CheckOutTime != nil
}

func (w WorkDay) IsLate() bool {
	return w.DelayMinutes > 0
}

// DayKey formats the calendar day the way stores key it.
func DayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// LocalDay truncates t to midnight of its calendar day in loc.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

const AnomalyNegativeWorkDuration = "negative_work_duration"

// RecordResult describes the transition a successful scan produced.
type RecordResult struct {
	Action         Action
	WorkDay        WorkDay
	DelayMinutes   int
	CheckOutTime   *time.Time
	TotalWorkHours float64
	Anomaly        string
	Message        string
}
