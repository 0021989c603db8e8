package attendance

import (
	"context"
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Scan rejections
	ErrInvalidFormat  = errors.New("scanned code is not an attendance code")
	ErrTokenNotFound  = errors.New("attendance code not found")
	ErrTokenForged    = errors.New("attendance code is not authentic")
	ErrTokenExpired   = errors.New("attendance code has expired")
	ErrDeviceMismatch = errors.New("scan came from a device not registered to this employee")

	// Recording
	ErrUnknownEmployee  = errors.New("no employee profile for this identity")
	ErrSettingsMissing  = errors.New("attendance settings are not configured")
	ErrAlreadyCompleted = errors.New("attendance for today is already completed")
	ErrCheckInConflict  = errors.New("a check-in for today was recorded concurrently")

	// General errors
	ErrWorkDayNotFound = errors.New("attendance record not found")
)

// PersistenceError wraps a store failure with the attempted operation and
// the record it targeted.
type PersistenceError struct {
	Op        string
	Target    string
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s of %s: %v", e.Op, e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError classifies err. A cancelled caller is not worth retrying;
// everything else, timeouts included, is.
func NewPersistenceError(op, target string, err error) *PersistenceError {
	return &PersistenceError{
		Op:        op,
		Target:    target,
		Retryable: !errors.Is(err, context.Canceled),
		Err:       err,
	}
}

// IsRetryable reports whether err is a transient persistence failure.
func IsRetryable(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr) && pErr.Retryable
}

// domainErrors pass through the persistence wrapper untouched.
var domainErrors = []error{
	ErrTokenNotFound,
	ErrAlreadyCompleted,
	ErrCheckInConflict,
	ErrWorkDayNotFound,
	ErrUnknownEmployee,
	ErrSettingsMissing,
}

// IsDomainError reports whether err is an expected outcome rather than a store failure.
func IsDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
