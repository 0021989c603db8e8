package http

import (
	"context"
	"io"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
)

type fakeAuthService struct {
	loginResp auth.TokenResponse
	loginErr  error
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) Logout(ctx context.Context) error {
	_, err := user.SessionFromContext(ctx)
	return err
}

func (f *fakeAuthService) Me(ctx context.Context) (auth.ProfileInfo, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return auth.ProfileInfo{}, err
	}
	return auth.ProfileInfo{EmployeeID: session.EmployeeID, Role: string(session.Role)}, nil
}

func (f *fakeAuthService) IssueSSEToken(ctx context.Context) (auth.SSETokenResponse, error) {
	return auth.SSETokenResponse{Token: "sse", ExpiresIn: 60}, nil
}

type fakeRotation struct {
	updates chan attendance.IssuedToken
	current attendance.IssuedToken
	stopped bool
}

func (f *fakeRotation) Updates() <-chan attendance.IssuedToken { return f.updates }
func (f *fakeRotation) Current() (attendance.IssuedToken, bool) {
	return f.current, f.current.Token.ID != ""
}
func (f *fakeRotation) Remaining(now time.Time) time.Duration { return 7 * time.Second }
func (f *fakeRotation) Stop()                                 { f.stopped = true }

type fakeAttendanceService struct {
	scanResp attendance.ScanResponse
	scanErr  error
	rotation *fakeRotation
	export   []byte
}

func (f *fakeAttendanceService) IssueToken(ctx context.Context) (attendance.IssuedTokenResponse, error) {
	return attendance.IssuedTokenResponse{TokenID: "tok-1", Payload: "tok-1|secret"}, nil
}

func (f *fakeAttendanceService) StartRotation(ctx context.Context) attendance.TokenRotation {
	return f.rotation
}

func (f *fakeAttendanceService) MapIssuedToken(issued attendance.IssuedToken) attendance.IssuedTokenResponse {
	return attendance.IssuedTokenResponse{TokenID: issued.Token.ID, Payload: issued.Payload}
}

func (f *fakeAttendanceService) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	return f.scanResp, f.scanErr
}

func (f *fakeAttendanceService) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

func (f *fakeAttendanceService) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

func (f *fakeAttendanceService) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, attendance.ErrWorkDayNotFound
}

func (f *fakeAttendanceService) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter, w io.Writer) error {
	_, err := w.Write(f.export)
	return err
}

func (f *fakeAttendanceService) PurgeStaleTokens(ctx context.Context) (attendance.PurgeResponse, error) {
	return attendance.PurgeResponse{Deleted: 3}, nil
}

type fakeEmployeeService struct{}

func (fakeEmployeeService) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: id}, nil
}
func (fakeEmployeeService) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{EmployeeCode: req.EmployeeCode}, nil
}
func (fakeEmployeeService) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: req.ID}, nil
}
func (fakeEmployeeService) DeleteEmployee(ctx context.Context, id string) error { return nil }
func (fakeEmployeeService) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	return employee.ListEmployeeResponse{}, nil
}
func (fakeEmployeeService) ResetDevice(ctx context.Context, id string) error { return nil }
func (fakeEmployeeService) ChangePassword(ctx context.Context, req employee.ChangePasswordRequest) error {
	return employee.ErrInvalidCurrentPassword
}

type fakeDashboardService struct {
	events chan attendance.RecordedEvent
}

func (f *fakeDashboardService) GetToday(ctx context.Context) (dashboard.TodayResponse, error) {
	return dashboard.TodayResponse{Date: "2026-03-02"}, nil
}

func (f *fakeDashboardService) Subscribe(ctx context.Context) (<-chan attendance.RecordedEvent, func()) {
	return f.events, func() {}
}

type fakePayrollService struct{}

func (fakePayrollService) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	return payroll.ListPayrollResponse{Page: filter.Page}, nil
}
func (fakePayrollService) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return payroll.PayrollResponse{}, payroll.ErrPayrollRecordNotFound
}
func (fakePayrollService) MarkPaid(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return payroll.PayrollResponse{}, payroll.ErrPayrollRecordAlreadyPaid
}

type fakeSettingsService struct{}

func (fakeSettingsService) GetAttendanceSettings(ctx context.Context) (settings.SettingsResponse, error) {
	return settings.SettingsResponse{CheckInTime: "09:00", CheckOutTime: "17:00"}, nil
}
func (fakeSettingsService) UpdateAttendanceSettings(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	return settings.SettingsResponse{CheckInTime: req.CheckInTime}, nil
}

type fakeEmployeeLookup map[string]employee.Employee

func (f fakeEmployeeLookup) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}
