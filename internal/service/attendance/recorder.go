package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/google/uuid"
)

// Recorder applies an accepted scan to the employee's work day: the first
// scan of a day checks in, the second checks out, anything after is refused.
type Recorder struct {
	employees    employee.EmployeeRepository
	settings     settings.SettingsRepository
	workDays     attendance.WorkDayRepository
	loc          *time.Location
	storeTimeout time.Duration
}

func NewRecorder(
	employees employee.EmployeeRepository,
	settingsRepo settings.SettingsRepository,
	workDays attendance.WorkDayRepository,
	loc *time.Location,
	storeTimeout time.Duration,
) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{
		employees:    employees,
		settings:     settingsRepo,
		workDays:     workDays,
		loc:          loc,
		storeTimeout: storeTimeout,
	}
}

// Record implements attendance.Recorder.
func (r *Recorder) Record(ctx context.Context, employeeID string, now time.Time) (attendance.RecordResult, error) {
	emp, err := storeCall(ctx, r.storeTimeout, "get", "employee "+employeeID, func(ctx context.Context) (employee.Employee, error) {
		return r.employees.GetByID(ctx, employeeID)
	}, employee.ErrEmployeeNotFound)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.RecordResult{}, attendance.ErrUnknownEmployee
		}
		return attendance.RecordResult{}, err
	}

	cfg, err := storeCall(ctx, r.storeTimeout, "get", "attendance_settings", r.settings.Get, settings.ErrSettingsNotFound)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsNotFound) {
			return attendance.RecordResult{}, attendance.ErrSettingsMissing
		}
		return attendance.RecordResult{}, err
	}

	today := attendance.LocalDay(now, r.loc)
	target := "work_day " + employeeID + "/" + attendance.DayKey(today)

	existing, err := storeCall(ctx, r.storeTimeout, "find", target, func(ctx context.Context) (*attendance.WorkDay, error) {
		return r.workDays.FindByEmployeeAndDate(ctx, employeeID, today)
	})
	if err != nil {
		return attendance.RecordResult{}, err
	}

	if existing != nil {
		if existing.IsClosed() {
			return attendance.RecordResult{}, attendance.ErrAlreadyCompleted
		}
		return r.checkOut(ctx, emp, cfg, *existing, today, now, target)
	}
	return r.checkIn(ctx, emp, cfg, today, now, target)
}

func (r *Recorder) checkIn(ctx context.Context, emp employee.Employee, cfg settings.AttendanceSettings, today, now time.Time, target string) (attendance.RecordResult, error) {
	start, err := r.scheduled(today, emp.ScheduledCheckIn(cfg.CheckInTime), cfg.CheckInTime)
	if err != nil {
		return attendance.RecordResult{}, err
	}
	deadline := start.Add(time.Duration(cfg.GracePeriodMinutes) * time.Minute)

	delay := 0
	if now.After(deadline) {
		delay = int(math.Floor(now.Sub(deadline).Minutes()))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.RecordResult{}, fmt.Errorf("generate work day id: %w", err)
	}

	created, err := storeCall(ctx, r.storeTimeout, "create", target, func(ctx context.Context) (attendance.WorkDay, error) {
		return r.workDays.Create(ctx, attendance.WorkDay{
			ID:           id.String(),
			EmployeeID:   emp.ID,
			Date:         today,
			CheckInTime:  now,
			DelayMinutes: delay,
		})
	})
	if err != nil {
		return attendance.RecordResult{}, err
	}

	message := "Checked in on time"
	if delay > 0 {
		message = fmt.Sprintf("Checked in %d minutes late", delay)
	}

	slog.Info("attendance check-in recorded", "employee_id", emp.ID, "date", attendance.DayKey(today), "delay_minutes", delay)
	return attendance.RecordResult{
		Action:       attendance.ActionCheckIn,
		WorkDay:      created,
		DelayMinutes: delay,
		Message:      message,
	}, nil
}

func (r *Recorder) checkOut(ctx context.Context, emp employee.Employee, cfg settings.AttendanceSettings, open attendance.WorkDay, today, now time.Time, target string) (attendance.RecordResult, error) {
	hours := now.Sub(open.CheckInTime).Hours()

	var anomaly string
	if hours < 0 {
		anomaly = attendance.AnomalyNegativeWorkDuration
		slog.Warn("check-out precedes check-in", "employee_id", emp.ID, "work_day_id", open.ID, "check_in", open.CheckInTime, "check_out", now)
	}

	overtime := 0.0
	if end, err := r.scheduled(today, emp.ScheduledCheckOut(cfg.CheckOutTime), cfg.CheckOutTime); err == nil && now.After(end) {
		overtime = now.Sub(end).Hours()
	}

	closed, err := storeCall(ctx, r.storeTimeout, "update", target, func(ctx context.Context) (attendance.WorkDay, error) {
		return r.workDays.CloseOpen(ctx, open.ID, now, hours, overtime)
	})
	if err != nil {
		return attendance.RecordResult{}, err
	}

	slog.Info("attendance check-out recorded", "employee_id", emp.ID, "date", attendance.DayKey(today), "total_work_hours", hours)
	checkOut := now
	return attendance.RecordResult{
		Action:         attendance.ActionCheckOut,
		WorkDay:        closed,
		DelayMinutes:   closed.DelayMinutes,
		CheckOutTime:   &checkOut,
		TotalWorkHours: hours,
		Anomaly:        anomaly,
		Message:        fmt.Sprintf("Checked out after %.2f hours", hours),
	}, nil
}

// scheduled resolves clock on today, retrying with fallback when an
// employee's own time is unparseable.
func (r *Recorder) scheduled(today time.Time, clock, fallback string) (time.Time, error) {
	at, err := settings.At(today, clock, r.loc)
	if err == nil {
		return at, nil
	}
	if clock != fallback {
		slog.Warn("invalid employee schedule time, using global setting", "clock", clock, "error", err)
		if at, err = settings.At(today, fallback, r.loc); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %v", attendance.ErrSettingsMissing, err)
}
