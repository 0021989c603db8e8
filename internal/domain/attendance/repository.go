package attendance

import (
	"context"
	"time"
)

// TokenRepository stores attendance tokens.
type TokenRepository interface {
	// Create persists a new token and never overwrites an existing one.
	Create(ctx context.Context, token Token) error

	// GetByID returns ErrTokenNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (Token, error)

	// DeleteIssuedBefore removes tokens issued before cutoff and returns how many.
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WorkDayRepository stores per-day attendance records.
type WorkDayRepository interface {
	// FindByEmployeeAndDate returns nil without error when no record exists.
	FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*WorkDay, error)

	// Create inserts a new open record. It fails with ErrCheckInConflict when a
	// record for the same employee and day already exists.
	Create(ctx context.Context, w WorkDay) (WorkDay, error)

	// CloseOpen sets the check-out fields only while the record is still open.
	// A record that is already closed yields ErrAlreadyCompleted.
	CloseOpen(ctx context.Context, id string, checkOut time.Time, totalHours, overtimeHours float64) (WorkDay, error)

	GetByID(ctx context.Context, id string) (WorkDay, error)

	List(ctx context.Context, filter AttendanceFilter) ([]WorkDay, int64, error)

	ListByDate(ctx context.Context, day time.Time) ([]WorkDay, error)
}
