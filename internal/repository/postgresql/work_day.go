package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workDayRepository struct {
	db *database.DB
}

func NewWorkDayRepository(db *database.DB) attendance.WorkDayRepository {
	return &workDayRepository{db: db}
}

const workDayColumns = `
	w.id, w.employee_id, w.work_date, w.check_in_time, w.check_out_time, w.delay_minutes,
	w.total_work_hours, w.overtime_hours, w.created_at, w.updated_at`

func scanWorkDay(row pgx.Row, withName bool) (attendance.WorkDay, error) {
	var w attendance.WorkDay
	dest := []interface{}{
		&w.ID, &w.EmployeeID, &w.Date, &w.CheckInTime, &w.CheckOutTime, &w.DelayMinutes,
		&w.TotalWorkHours, &w.OvertimeHours, &w.CreatedAt, &w.UpdatedAt,
	}
	if withName {
		dest = append(dest, &w.EmployeeName)
	}
	err := row.Scan(dest...)
	return w, err
}

// FindByEmployeeAndDate implements attendance.WorkDayRepository.
func (r *workDayRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*attendance.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workDayColumns + `
		FROM work_days w
		WHERE w.employee_id = $1 AND w.work_date = $2::date`

	w, err := scanWorkDay(q.QueryRow(ctx, query, employeeID, attendance.DayKey(day)), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find work day: %w", err)
	}
	return &w, nil
}

// Create implements attendance.WorkDayRepository. The unique index on
// (employee_id, work_date) decides concurrent check-ins.
func (r *workDayRepository) Create(ctx context.Context, w attendance.WorkDay) (attendance.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_days (id, employee_id, work_date, check_in_time, delay_minutes)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING ` + strings.ReplaceAll(workDayColumns, "w.", "")

	created, err := scanWorkDay(q.QueryRow(ctx, query, w.ID, w.EmployeeID, attendance.DayKey(w.Date), w.CheckInTime, w.DelayMinutes), false)
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return attendance.WorkDay{}, attendance.ErrCheckInConflict
		}
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return attendance.WorkDay{}, attendance.ErrUnknownEmployee
		}
		return attendance.WorkDay{}, fmt.Errorf("failed to create work day: %w", err)
	}
	return created, nil
}

// CloseOpen implements attendance.WorkDayRepository.
func (r *workDayRepository) CloseOpen(ctx context.Context, id string, checkOut time.Time, totalHours, overtimeHours float64) (attendance.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_days SET
			check_out_time = $2,
			total_work_hours = $3,
			overtime_hours = $4,
			updated_at = NOW()
		WHERE id = $1 AND check_out_time IS NULL
		RETURNING ` + strings.ReplaceAll(workDayColumns, "w.", "")

	closed, err := scanWorkDay(q.QueryRow(ctx, query, id, checkOut, totalHours, overtimeHours), false)
	if err == nil {
		return closed, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.WorkDay{}, fmt.Errorf("failed to close work day: %w", err)
	}

	// No row matched: the record is gone or someone else closed it first.
	if _, err := r.GetByID(ctx, id); err != nil {
		return attendance.WorkDay{}, err
	}
	return attendance.WorkDay{}, attendance.ErrAlreadyCompleted
}

// GetByID implements attendance.WorkDayRepository.
func (r *workDayRepository) GetByID(ctx context.Context, id string) (attendance.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workDayColumns + `, e.full_name
		FROM work_days w
		LEFT JOIN employees e ON w.employee_id = e.id
		WHERE w.id = $1`

	w, err := scanWorkDay(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsPgError(err, database.InvalidTextInput) {
			return attendance.WorkDay{}, attendance.ErrWorkDayNotFound
		}
		return attendance.WorkDay{}, fmt.Errorf("failed to get work day: %w", err)
	}
	return w, nil
}

// List implements attendance.WorkDayRepository.
func (r *workDayRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.WorkDay, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE conditions
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("w.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("w.work_date = $%d::date", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("w.work_date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("w.work_date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil {
		switch *filter.Status {
		case attendance.StatusLate:
			conditions = append(conditions, "w.delay_minutes > 0")
		case attendance.StatusOnTime:
			conditions = append(conditions, "w.delay_minutes = 0")
		}
	}
	if filter.OpenOnly {
		conditions = append(conditions, "w.check_out_time IS NULL")
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM work_days w WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count work days: %w", err)
	}

	// Validate sort column
	validSortColumns := map[string]string{
		"date":           "w.work_date",
		"check_in_time":  "w.check_in_time",
		"check_out_time": "w.check_out_time",
		"delay_minutes":  "w.delay_minutes",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "w.work_date"
	}
	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM work_days w
		LEFT JOIN employees e ON w.employee_id = e.id
		WHERE %s
		ORDER BY %s %s NULLS LAST, w.check_in_time DESC, w.id
		LIMIT $%d OFFSET $%d
	`, workDayColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work days: %w", err)
	}
	defer rows.Close()

	var workDays []attendance.WorkDay
	for rows.Next() {
		w, err := scanWorkDay(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan work day: %w", err)
		}
		workDays = append(workDays, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return workDays, total, nil
}

// ListByDate implements attendance.WorkDayRepository.
func (r *workDayRepository) ListByDate(ctx context.Context, day time.Time) ([]attendance.WorkDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workDayColumns + `, e.full_name
		FROM work_days w
		LEFT JOIN employees e ON w.employee_id = e.id
		WHERE w.work_date = $1::date
		ORDER BY w.check_in_time`

	rows, err := q.Query(ctx, query, attendance.DayKey(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list work days by date: %w", err)
	}
	defer rows.Close()

	var workDays []attendance.WorkDay
	for rows.Next() {
		w, err := scanWorkDay(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work day: %w", err)
		}
		workDays = append(workDays, w)
	}
	return workDays, rows.Err()
}
