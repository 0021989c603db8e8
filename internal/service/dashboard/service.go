package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	workDayRepo  attendance.WorkDayRepository
	hub          *sse.Hub
	loc          *time.Location
	now          func() time.Time
}

func NewDashboardService(employeeRepo employee.EmployeeRepository, workDayRepo attendance.WorkDayRepository, hub *sse.Hub, loc *time.Location) dashboard.DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		employeeRepo: employeeRepo,
		workDayRepo:  workDayRepo,
		hub:          hub,
		loc:          loc,
		now:          time.Now,
	}
}

// GetToday returns headcount and today's check-ins using parallel goroutines
func (s *DashboardServiceImpl) GetToday(ctx context.Context) (dashboard.TodayResponse, error) {
	today := attendance.LocalDay(s.now(), s.loc)

	var (
		counts  map[employee.Status]int64
		records []attendance.WorkDay
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		counts, err = s.employeeRepo.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("count employees: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		records, err = s.workDayRepo.ListByDate(gctx, today)
		if err != nil {
			return fmt.Errorf("list today's attendance: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.TodayResponse{}, err
	}

	names, err := s.missingNames(ctx, records)
	if err != nil {
		return dashboard.TodayResponse{}, err
	}

	summary := dashboard.EmployeeSummaryResponse{
		ActiveEmployee:   counts[employee.StatusActive],
		OnLeaveEmployee:  counts[employee.StatusOnLeave],
		InactiveEmployee: counts[employee.StatusInactive],
	}
	summary.TotalEmployee = summary.ActiveEmployee + summary.OnLeaveEmployee + summary.InactiveEmployee

	var stats dashboard.AttendanceStatsResponse
	items := make([]dashboard.AttendanceRecordItem, 0, len(records))
	for i, w := range records {
		status := "on_time"
		if w.IsLate() {
			status = "late"
			stats.Late++
		} else {
			stats.OnTime++
		}

		item := dashboard.AttendanceRecordItem{
			No:           i + 1,
			EmployeeID:   w.EmployeeID,
			EmployeeName: names[w.EmployeeID],
			Status:       status,
			DelayMinutes: w.DelayMinutes,
			CheckIn:      w.CheckInTime.In(s.loc).Format("15:04"),
		}
		if w.EmployeeName != nil {
			item.EmployeeName = *w.EmployeeName
		}
		if w.IsClosed() {
			stats.CheckedOut++
			out := w.CheckOutTime.In(s.loc).Format("15:04")
			item.CheckOut = &out
		}
		items = append(items, item)
	}

	stats.Absent = max(summary.ActiveEmployee-stats.OnTime-stats.Late, 0)
	if expected := summary.ActiveEmployee; expected > 0 {
		stats.OnTimePercent = percent(stats.OnTime, expected)
		stats.LatePercent = percent(stats.Late, expected)
		stats.AbsentPercent = percent(stats.Absent, expected)
	}

	return dashboard.TodayResponse{
		Date:            attendance.DayKey(today),
		EmployeeSummary: summary,
		AttendanceStats: stats,
		Records:         items,
	}, nil
}

// missingNames resolves names for rows the store returned without a join.
func (s *DashboardServiceImpl) missingNames(ctx context.Context, records []attendance.WorkDay) (map[string]string, error) {
	var ids []string
	for _, w := range records {
		if w.EmployeeName == nil {
			ids = append(ids, w.EmployeeID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	names, err := s.employeeRepo.GetNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve employee names: %w", err)
	}
	return names, nil
}

// Subscribe implements dashboard.DashboardService.
func (s *DashboardServiceImpl) Subscribe(ctx context.Context) (<-chan attendance.RecordedEvent, func()) {
	events, unsubscribe := s.hub.Subscribe(attendance.EventTopic)
	out := make(chan attendance.RecordedEvent, 1)

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				recorded, ok := ev.Data.(attendance.RecordedEvent)
				if !ok {
					continue
				}
				select {
				case out <- recorded:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, unsubscribe
}

func percent(part, whole int64) float64 {
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
