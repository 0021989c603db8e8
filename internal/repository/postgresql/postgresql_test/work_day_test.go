package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRollback = errors.New("rollback")

func createTestEmployee(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, code string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(ctx, employee.Employee{
		ID:           uuid.NewString(),
		EmployeeCode: code,
		FullName:     "Test " + code,
		PasswordHash: "$2a$10$hash",
		Role:         user.RoleEmployee,
		Permissions:  []user.Screen{user.ScreenAttendance},
		ContractType: employee.ContractFullTime,
		HireDate:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:       employee.StatusActive,
		BaseSalary:   decimal.NewFromInt(4500000),
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	emp := createTestEmployee(t, ctx, repo, "EMP001")
	assert.Equal(t, []user.Screen{user.ScreenAttendance}, emp.Permissions)
	assert.True(t, emp.BaseSalary.Equal(decimal.NewFromInt(4500000)))

	_, err := repo.Create(ctx, employee.Employee{
		ID: uuid.NewString(), EmployeeCode: "EMP001", FullName: "Dup", PasswordHash: "x",
		Role: user.RoleEmployee, ContractType: employee.ContractFullTime, HireDate: time.Now(), Status: employee.StatusActive,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	byCode, err := repo.GetByEmployeeCode(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, byCode.ID)

	require.NoError(t, repo.BindDevice(ctx, emp.ID, "phone-1"))
	require.NoError(t, repo.BindDevice(ctx, emp.ID, "phone-1"))
	assert.ErrorIs(t, repo.BindDevice(ctx, emp.ID, "phone-2"), employee.ErrDeviceAlreadyBound)
	require.NoError(t, repo.ResetDevice(ctx, emp.ID))
	require.NoError(t, repo.BindDevice(ctx, emp.ID, "phone-2"))

	names, err := repo.GetNames(ctx, []string{emp.ID})
	require.NoError(t, err)
	assert.Equal(t, "Test EMP001", names[emp.ID])

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[employee.StatusActive])

	require.NoError(t, repo.SoftDelete(ctx, emp.ID))
	_, err = repo.GetByID(ctx, emp.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestWorkDayRepository_CheckInAndOutRaces(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP002")
	repo := postgresql.NewWorkDayRepository(setup.DB)

	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, loc)
	checkIn := time.Date(2025, 1, 6, 9, 12, 0, 0, loc)

	const racers = 5
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, attendance.WorkDay{
				ID: uuid.NewString(), EmployeeID: emp.ID, Date: day, CheckInTime: checkIn, DelayMinutes: 2,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, attendance.ErrCheckInConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, conflicts)

	open, err := repo.FindByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, "2025-01-06", attendance.DayKey(open.Date))
	assert.True(t, open.CheckInTime.Equal(checkIn))

	closed, err := repo.CloseOpen(ctx, open.ID, checkIn.Add(8*time.Hour), 8, 0.2)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOutTime)
	assert.InDelta(t, 8.0, closed.TotalWorkHours, 0.0001)

	_, err = repo.CloseOpen(ctx, open.ID, checkIn.Add(9*time.Hour), 9, 1)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)

	_, err = repo.CloseOpen(ctx, uuid.NewString(), checkIn, 0, 0)
	assert.ErrorIs(t, err, attendance.ErrWorkDayNotFound)

	missing, err := repo.FindByEmployeeAndDate(ctx, emp.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)

	today, err := repo.ListByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, today, 1)
	require.NotNil(t, today[0].EmployeeName)
	assert.Equal(t, "Test EMP002", *today[0].EmployeeName)

	late := attendance.StatusLate
	rows, total, err := repo.List(ctx, attendance.AttendanceFilter{Status: &late, Page: 1, Limit: 10, SortBy: "date", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)
}

func TestAttendanceTokenRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceTokenRepository(setup.DB)

	issued := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Microsecond)
	old := attendance.Token{ID: uuid.NewString(), Secret: "s1", IssuedAt: issued, ValidUntil: issued.Add(10 * time.Second)}
	fresh := attendance.Token{ID: uuid.NewString(), Secret: "s2", IssuedAt: time.Now().UTC(), ValidUntil: time.Now().Add(10 * time.Second).UTC()}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))
	assert.Error(t, repo.Create(ctx, old), "tokens are never overwritten")

	got, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.Secret)
	assert.True(t, got.IssuedAt.Equal(issued))

	n, err := repo.DeleteIssuedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, attendance.ErrTokenNotFound)
}

func TestSettingsRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSettingsRepository(setup.DB)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)

	_, err = repo.Upsert(ctx, settings.AttendanceSettings{CheckInTime: "09:00", CheckOutTime: "17:00", GracePeriodMinutes: 10, TokenRotationSeconds: 10})
	require.NoError(t, err)
	saved, err := repo.Upsert(ctx, settings.AttendanceSettings{CheckInTime: "08:00", CheckOutTime: "16:00", GracePeriodMinutes: 5, TokenRotationSeconds: 15})
	require.NoError(t, err)
	assert.Equal(t, "08:00", saved.CheckInTime)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, got.TokenRotationSeconds)
}

func TestPayrollRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	emp := createTestEmployee(t, ctx, postgresql.NewEmployeeRepository(setup.DB), "EMP003")

	for month, net := range map[int]int64{1: 4000000, 2: 4200000} {
		_, err := setup.DB.Exec(ctx, `
			INSERT INTO payrolls (id, employee_id, period_month, period_year, base_salary, allowances, deductions, overtime_pay, net_salary)
			VALUES ($1, $2, $3, 2025, $4, 0, 0, 0, $4)`, uuid.NewString(), emp.ID, month, net)
		require.NoError(t, err)
	}

	repo := postgresql.NewPayrollRepository(setup.DB)
	rows, total, err := repo.List(ctx, payroll.PayrollFilter{Page: 1, Limit: 1, SortBy: "period", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Month)
	require.NotNil(t, rows[0].EmployeeCode)
	assert.Equal(t, "EMP003", *rows[0].EmployeeCode)

	totals, count, err := repo.Summarize(ctx, payroll.PayrollFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.True(t, totals.NetSalary.Equal(decimal.NewFromInt(8200000)))

	paid, err := repo.MarkPaid(ctx, rows[0].ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusPaid, paid.Status)
	_, err = repo.MarkPaid(ctx, rows[0].ID, time.Now())
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)
}

func TestRevocationRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRevocationRepository(setup.DB)

	now := time.Now()
	require.NoError(t, repo.Revoke(ctx, "live-hash", now.Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "live-hash", now.Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "dead-hash", now.Add(-time.Hour)))

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, active, "live-hash")
	assert.NotContains(t, active, "dead-hash")

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	err := postgresql.WithTransaction(ctx, setup.DB, func(txCtx context.Context) error {
		createTestEmployee(t, txCtx, repo, "EMP900")
		return errRollback
	})
	assert.ErrorIs(t, err, errRollback)

	_, err = repo.GetByEmployeeCode(ctx, "EMP900")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
