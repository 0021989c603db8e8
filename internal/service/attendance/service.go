package attendance

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/sse"
)

const exportPageSize = 500

type AttendanceServiceImpl struct {
	attendance.TokenRepository
	attendance.WorkDayRepository
	employee.EmployeeRepository

	issuer          attendance.TokenIssuer
	verifier        attendance.TokenVerifier
	recorder        attendance.Recorder
	hub             *sse.Hub
	loc             *time.Location
	storeTimeout    time.Duration
	defaultRotation time.Duration
	now             func() time.Time
}

type Config struct {
	Location        *time.Location
	StoreTimeout    time.Duration
	DefaultRotation time.Duration
}

func NewAttendanceService(
	tokenRepo attendance.TokenRepository,
	workDayRepo attendance.WorkDayRepository,
	employeeRepo employee.EmployeeRepository,
	issuer attendance.TokenIssuer,
	verifier attendance.TokenVerifier,
	recorder attendance.Recorder,
	hub *sse.Hub,
	cfg Config,
) attendance.AttendanceService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		TokenRepository:    tokenRepo,
		WorkDayRepository:  workDayRepo,
		EmployeeRepository: employeeRepo,
		issuer:             issuer,
		verifier:           verifier,
		recorder:           recorder,
		hub:                hub,
		loc:                loc,
		storeTimeout:       cfg.StoreTimeout,
		defaultRotation:    cfg.DefaultRotation,
		now:                time.Now,
	}
}

// IssueToken implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) IssueToken(ctx context.Context) (attendance.IssuedTokenResponse, error) {
	issued, err := a.issuer.Issue(ctx)
	if err != nil {
		return attendance.IssuedTokenResponse{}, err
	}
	return a.MapIssuedToken(issued), nil
}

// StartRotation implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartRotation(ctx context.Context) attendance.TokenRotation {
	return StartRotation(ctx, a.issuer, a.defaultRotation)
}

// MapIssuedToken renders an issued token for JSON transport.
func (a *AttendanceServiceImpl) MapIssuedToken(issued attendance.IssuedToken) attendance.IssuedTokenResponse {
	return attendance.IssuedTokenResponse{
		TokenID:         issued.Token.ID,
		Payload:         issued.Payload,
		IssuedAt:        issued.Token.IssuedAt.In(a.loc).Format(time.RFC3339),
		ValidUntil:      issued.Token.ValidUntil.In(a.loc).Format(time.RFC3339),
		RotationSeconds: issued.RotationSeconds,
		QRCodePNG:       base64.StdEncoding.EncodeToString(issued.QRCodePNG),
	}
}

// Scan implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	if _, err := a.verifier.Verify(ctx, req.Payload); err != nil {
		return attendance.ScanResponse{}, err
	}

	emp, bound, err := a.checkDevice(ctx, session.EmployeeID, req.DeviceID)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	now := a.now()
	result, err := a.recorder.Record(ctx, session.EmployeeID, now)
	if err != nil {
		if bound {
			a.releaseDevice(ctx, session.EmployeeID)
		}
		slog.Info("attendance scan refused", "employee_id", session.EmployeeID, "error", err)
		return attendance.ScanResponse{}, err
	}

	if bound {
		slog.Info("device bound on first scan", "employee_id", session.EmployeeID)
	}
	a.publish(emp, result)
	return a.mapScanResult(result), nil
}

// checkDevice enforces device binding before anything is recorded. An employee
// with verification on and no device yet gets the scanning device bound, and
// bound reports that this call did it.
func (a *AttendanceServiceImpl) checkDevice(ctx context.Context, employeeID, deviceID string) (emp employee.Employee, bound bool, err error) {
	emp, err = storeCall(ctx, a.storeTimeout, "get", "employee "+employeeID, func(ctx context.Context) (employee.Employee, error) {
		return a.EmployeeRepository.GetByID(ctx, employeeID)
	}, employee.ErrEmployeeNotFound)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, false, attendance.ErrUnknownEmployee
		}
		return employee.Employee{}, false, err
	}
	// Access tokens outlive deactivation; the stored status decides.
	if emp.Status == employee.StatusInactive {
		return employee.Employee{}, false, auth.ErrEmployeeInactive
	}

	if !emp.DeviceVerificationEnabled {
		return emp, false, nil
	}
	if deviceID == "" {
		return employee.Employee{}, false, attendance.ErrDeviceMismatch
	}
	if emp.DeviceID == nil || *emp.DeviceID == "" {
		_, err := storeCall(ctx, a.storeTimeout, "update", "employee "+employeeID+" device", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.EmployeeRepository.BindDevice(ctx, employeeID, deviceID)
		}, employee.ErrDeviceAlreadyBound)
		if err != nil {
			if errors.Is(err, employee.ErrDeviceAlreadyBound) {
				return employee.Employee{}, false, attendance.ErrDeviceMismatch
			}
			return employee.Employee{}, false, err
		}
		emp.DeviceID = &deviceID
		bound = true
	}
	if !emp.DeviceMatches(deviceID) {
		return employee.Employee{}, bound, attendance.ErrDeviceMismatch
	}
	return emp, bound, nil
}

// releaseDevice clears a binding made by a scan that was then refused. The
// scan ctx may already be past its deadline.
func (a *AttendanceServiceImpl) releaseDevice(ctx context.Context, employeeID string) {
	_, err := storeCall(context.WithoutCancel(ctx), a.storeTimeout, "update", "employee "+employeeID+" device", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.EmployeeRepository.ResetDevice(ctx, employeeID)
	})
	if err != nil {
		slog.Warn("failed to release device after refused scan", "employee_id", employeeID, "error", err)
		return
	}
	slog.Info("device binding released after refused scan", "employee_id", employeeID)
}

func (a *AttendanceServiceImpl) publish(emp employee.Employee, result attendance.RecordResult) {
	if a.hub == nil {
		return
	}
	at := result.WorkDay.CheckInTime
	if result.CheckOutTime != nil {
		at = *result.CheckOutTime
	}
	a.hub.Publish(sse.Event{
		Topic: attendance.EventTopic,
		Event: string(result.Action),
		Data: attendance.RecordedEvent{
			Action:       string(result.Action),
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Date:         attendance.DayKey(result.WorkDay.Date),
			At:           at.In(a.loc).Format(time.RFC3339),
			DelayMinutes: result.DelayMinutes,
			IsLate:       result.DelayMinutes > 0,
		},
	})
}

func (a *AttendanceServiceImpl) mapScanResult(result attendance.RecordResult) attendance.ScanResponse {
	resp := attendance.ScanResponse{
		Action:       string(result.Action),
		Message:      result.Message,
		WorkDayID:    result.WorkDay.ID,
		Date:         attendance.DayKey(result.WorkDay.Date),
		CheckInTime:  result.WorkDay.CheckInTime.In(a.loc).Format(time.RFC3339),
		DelayMinutes: result.DelayMinutes,
		Anomaly:      result.Anomaly,
	}
	if result.CheckOutTime != nil {
		out := result.CheckOutTime.In(a.loc).Format(time.RFC3339)
		hours := result.TotalWorkHours
		resp.CheckOutTime = &out
		resp.TotalWorkHours = &hours
	}
	return resp
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return a.ListAttendance(ctx, filter.ForEmployee(session.EmployeeID))
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	workDays, total, err := a.WorkDayRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}
	if err := a.fillEmployeeNames(ctx, workDays); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(workDays))
	for _, w := range workDays {
		responses = append(responses, a.mapWorkDayToResponse(w))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	w, err := a.WorkDayRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	rows := []attendance.WorkDay{w}
	if err := a.fillEmployeeNames(ctx, rows); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.mapWorkDayToResponse(rows[0]), nil
}

// ExportAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter, w io.Writer) error {
	filter.Page = 1
	filter.Limit = exportPageSize
	if err := filter.Validate(); err != nil {
		return err
	}

	sheet := export.Sheet{
		Name:    "Attendance",
		Headers: []string{"Employee", "Date", "Check In", "Check Out", "Delay (min)", "Work Hours", "Overtime Hours", "Status"},
		Widths:  []float64{28, 12, 10, 10, 12, 12, 15, 10},
	}

	for {
		workDays, total, err := a.WorkDayRepository.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list attendances for export: %w", err)
		}
		if err := a.fillEmployeeNames(ctx, workDays); err != nil {
			return err
		}
		for _, wd := range workDays {
			sheet.Rows = append(sheet.Rows, a.exportRow(wd))
		}
		if len(workDays) == 0 || int64(filter.Page*filter.Limit) >= total {
			break
		}
		filter.Page++
	}

	return export.WriteXLSX(w, sheet)
}

func (a *AttendanceServiceImpl) exportRow(w attendance.WorkDay) []interface{} {
	resp := a.mapWorkDayToResponse(w)
	checkOut, hours, overtime := "", "", ""
	if w.CheckOutTime != nil {
		checkOut = w.CheckOutTime.In(a.loc).Format("15:04")
		hours = fmt.Sprintf("%.2f", w.TotalWorkHours)
		overtime = fmt.Sprintf("%.2f", w.OvertimeHours)
	}
	return []interface{}{
		resp.EmployeeName,
		resp.Date,
		w.CheckInTime.In(a.loc).Format("15:04"),
		checkOut,
		w.DelayMinutes,
		hours,
		overtime,
		resp.Status,
	}
}

// PurgeStaleTokens implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PurgeStaleTokens(ctx context.Context) (attendance.PurgeResponse, error) {
	cutoff := attendance.LocalDay(a.now(), a.loc)
	deleted, err := storeCall(ctx, a.storeTimeout, "delete", "attendance_tokens before "+attendance.DayKey(cutoff), func(ctx context.Context) (int64, error) {
		return a.TokenRepository.DeleteIssuedBefore(ctx, cutoff)
	})
	if err != nil {
		return attendance.PurgeResponse{}, err
	}
	return attendance.PurgeResponse{Deleted: deleted, Before: cutoff.Format(time.RFC3339)}, nil
}

// fillEmployeeNames resolves names the store could not join.
func (a *AttendanceServiceImpl) fillEmployeeNames(ctx context.Context, rows []attendance.WorkDay) error {
	var ids []string
	seen := make(map[string]struct{})
	for _, w := range rows {
		if w.EmployeeName != nil {
			continue
		}
		if _, ok := seen[w.EmployeeID]; !ok {
			seen[w.EmployeeID] = struct{}{}
			ids = append(ids, w.EmployeeID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := a.EmployeeRepository.GetNames(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve employee names: %w", err)
	}
	for i := range rows {
		if rows[i].EmployeeName == nil {
			if name, ok := names[rows[i].EmployeeID]; ok {
				rows[i].EmployeeName = &name
			}
		}
	}
	return nil
}

// mapWorkDayToResponse converts a WorkDay entity to AttendanceResponse
func (a *AttendanceServiceImpl) mapWorkDayToResponse(w attendance.WorkDay) attendance.AttendanceResponse {
	var employeeName string
	if w.EmployeeName != nil {
		employeeName = *w.EmployeeName
	}

	status := attendance.StatusOnTime
	if w.IsLate() {
		status = attendance.StatusLate
	}

	resp := attendance.AttendanceResponse{
		ID:           w.ID,
		EmployeeID:   w.EmployeeID,
		EmployeeName: employeeName,
		Date:         attendance.DayKey(w.Date),
		CheckInTime:  w.CheckInTime.In(a.loc).Format(time.RFC3339),
		DelayMinutes: w.DelayMinutes,
		Status:       status,
		IsOpen:       !w.IsClosed(),
	}
	if w.CheckOutTime != nil {
		out := w.CheckOutTime.In(a.loc).Format(time.RFC3339)
		hours, overtime := w.TotalWorkHours, w.OvertimeHours
		resp.CheckOutTime = &out
		resp.TotalWorkHours = &hours
		resp.OvertimeHours = &overtime
	}
	return resp
}
