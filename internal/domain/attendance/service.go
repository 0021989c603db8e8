package attendance

import (
	"context"
	"io"
	"time"
)

// TokenIssuer creates a fresh token for every rotation.
type TokenIssuer interface {
	Issue(ctx context.Context) (IssuedToken, error)
}

// TokenVerifier accepts or rejects a scanned payload without mutating anything.
type TokenVerifier interface {
	Verify(ctx context.Context, payload string) (Token, error)
}

// Recorder turns an accepted scan into a check-in or check-out.
type Recorder interface {
	Record(ctx context.Context, employeeID string, now time.Time) (RecordResult, error)
}

// TokenRotation is a running issuer loop owned by one display.
type TokenRotation interface {
	Updates() <-chan IssuedToken
	Current() (IssuedToken, bool)
	Remaining(now time.Time) time.Duration
	Stop()
}

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// IssueToken issues a single token outside of a rotation
	IssueToken(ctx context.Context) (IssuedTokenResponse, error)

	// StartRotation starts a rotation bound to ctx
	StartRotation(ctx context.Context) TokenRotation
	// MapIssuedToken renders a rotation update the same way IssueToken does
	MapIssuedToken(issued IssuedToken) IssuedTokenResponse

	// Scan verifies the payload and records attendance for the session's employee
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// GetMyAttendance retrieves attendance records for the authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (hr/admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ExportAttendance writes the filtered log as an XLSX workbook
	ExportAttendance(ctx context.Context, filter AttendanceFilter, w io.Writer) error

	// PurgeStaleTokens deletes tokens issued before today
	PurgeStaleTokens(ctx context.Context) (PurgeResponse, error)
}
