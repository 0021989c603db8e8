package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
)

var errStoreDown = errors.New("store unavailable")

// ========== tokens ==========

type fakeTokenRepo struct {
	mu        sync.Mutex
	tokens    map[string]attendance.Token
	createErr error
	getErr    error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]attendance.Token)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, token attendance.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.tokens[token.ID]; exists {
		return errors.New("duplicate token id")
	}
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id string) (attendance.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return attendance.Token{}, f.getErr
	}
	t, ok := f.tokens[id]
	if !ok {
		return attendance.Token{}, attendance.ErrTokenNotFound
	}
	return t, nil
}

func (f *fakeTokenRepo) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.tokens {
		if t.IssuedAt.Before(cutoff) {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

// ========== settings ==========

type fakeSettingsRepo struct {
	settings *settings.AttendanceSettings
	err      error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	if f.err != nil {
		return settings.AttendanceSettings{}, f.err
	}
	if f.settings == nil {
		return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
	}
	return *f.settings, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	f.settings = &s
	return s, nil
}

// ========== work days ==========

// fakeWorkDayRepo enforces the same uniqueness and compare-and-swap rules the
// real stores rely on.
type fakeWorkDayRepo struct {
	mu      sync.Mutex
	records map[string]attendance.WorkDay
	findErr error
	// staleFind makes every lookup miss, as if all callers read before any write landed.
	staleFind bool
	// block makes Find wait for ctx, for timeout tests.
	block bool
}

func newFakeWorkDayRepo() *fakeWorkDayRepo {
	return &fakeWorkDayRepo{records: make(map[string]attendance.WorkDay)}
}

func (f *fakeWorkDayRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*attendance.WorkDay, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.staleFind {
		return nil, nil
	}
	for _, w := range f.records {
		if w.EmployeeID == employeeID && attendance.DayKey(w.Date) == attendance.DayKey(day) {
			found := w
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkDayRepo) Create(ctx context.Context, w attendance.WorkDay) (attendance.WorkDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.EmployeeID == w.EmployeeID && attendance.DayKey(existing.Date) == attendance.DayKey(w.Date) {
			return attendance.WorkDay{}, attendance.ErrCheckInConflict
		}
	}
	w.CreatedAt = w.CheckInTime
	w.UpdatedAt = w.CheckInTime
	f.records[w.ID] = w
	return w, nil
}

func (f *fakeWorkDayRepo) CloseOpen(ctx context.Context, id string, checkOut time.Time, totalHours, overtimeHours float64) (attendance.WorkDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.records[id]
	if !ok {
		return attendance.WorkDay{}, attendance.ErrWorkDayNotFound
	}
	if w.CheckOutTime != nil {
		return attendance.WorkDay{}, attendance.ErrAlreadyCompleted
	}
	w.CheckOutTime = &checkOut
	w.TotalWorkHours = totalHours
	w.OvertimeHours = overtimeHours
	w.UpdatedAt = checkOut
	f.records[id] = w
	return w, nil
}

func (f *fakeWorkDayRepo) GetByID(ctx context.Context, id string) (attendance.WorkDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.records[id]
	if !ok {
		return attendance.WorkDay{}, attendance.ErrWorkDayNotFound
	}
	return w, nil
}

func (f *fakeWorkDayRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.WorkDay, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []attendance.WorkDay
	for _, w := range f.records {
		if filter.EmployeeID != nil && w.EmployeeID != *filter.EmployeeID {
			continue
		}
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckInTime.Before(all[j].CheckInTime) })

	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+filter.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (f *fakeWorkDayRepo) ListByDate(ctx context.Context, day time.Time) ([]attendance.WorkDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.WorkDay
	for _, w := range f.records {
		if attendance.DayKey(w.Date) == attendance.DayKey(day) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkDayRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// ========== employees ==========

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func newFakeEmployeeRepo(emps ...employee.Employee) *fakeEmployeeRepo {
	f := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range emps {
		f.employees[e.ID] = e
	}
	return f
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) BindDevice(ctx context.Context, id string, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if e.DeviceID != nil && *e.DeviceID != "" {
		return employee.ErrDeviceAlreadyBound
	}
	e.DeviceID = &deviceID
	f.employees[id] = e
	return nil
}

func (f *fakeEmployeeRepo) ResetDevice(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.DeviceID = nil
	f.employees[id] = e
	return nil
}

func (f *fakeEmployeeRepo) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if e, ok := f.employees[id]; ok {
			names[id] = e.FullName
		}
	}
	return names, nil
}

// ========== qr ==========

type fakeEncoder struct{ err error }

func (f fakeEncoder) PNG(content string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + content), nil
}

// ========== helpers ==========

func strPtr(s string) *string { return &s }

func defaultSettings() *settings.AttendanceSettings {
	return &settings.AttendanceSettings{
		CheckInTime:          "09:00",
		CheckOutTime:         "17:00",
		GracePeriodMinutes:   10,
		TokenRotationSeconds: 10,
	}
}
