package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	pr.id, pr.employee_id, pr.period_month, pr.period_year, pr.base_salary, pr.allowances,
	pr.deductions, pr.overtime_pay, pr.net_salary, pr.status, pr.paid_at, pr.created_at, pr.updated_at,
	e.full_name AS employee_name, e.employee_code`

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var rec payroll.Payroll
	var status string
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &rec.BaseSalary, &rec.Allowances,
		&rec.Deductions, &rec.OvertimePay, &rec.NetSalary, &status, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	rec.Status = payroll.PayrollStatus(status)
	return rec, err
}

// payrollWhere builds the shared filter for List and Summarize.
func payrollWhere(filter payroll.PayrollFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		where += fmt.Sprintf(" AND pr.period_month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		where += fmt.Sprintf(" AND pr.period_year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
	}
	return where, args
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payrolls pr
		LEFT JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1`

	rec, err := scanPayroll(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsPgError(err, database.InvalidTextInput) {
			return payroll.Payroll{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := payrollWhere(filter)
	baseQuery := `
		FROM payrolls pr
		LEFT JOIN employees e ON pr.employee_id = e.id` + where

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	// Sort
	orderBy := fmt.Sprintf("pr.period_year %[1]s, pr.period_month %[1]s, e.full_name", sortOrder)
	switch filter.SortBy {
	case "employee_name":
		orderBy = "e.full_name " + sortOrder + ", pr.period_year DESC, pr.period_month DESC"
	case "net_salary":
		orderBy = "pr.net_salary " + sortOrder + ", pr.id"
	}

	offset := (filter.Page - 1) * filter.Limit
	argIdx := len(args) + 1
	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, payrollColumns, baseQuery, orderBy, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Payroll
	for rows.Next() {
		rec, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, totalCount, nil
}

func (r *payrollRepository) Summarize(ctx context.Context, filter payroll.PayrollFilter) (payroll.Totals, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := payrollWhere(filter)
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(pr.base_salary), 0),
			COALESCE(SUM(pr.allowances), 0),
			COALESCE(SUM(pr.deductions), 0),
			COALESCE(SUM(pr.overtime_pay), 0),
			COALESCE(SUM(pr.net_salary), 0)
		FROM payrolls pr` + where

	var totals payroll.Totals
	var count int64
	err := q.QueryRow(ctx, query, args...).Scan(
		&count, &totals.BaseSalary, &totals.Allowances, &totals.Deductions, &totals.OvertimePay, &totals.NetSalary,
	)
	if err != nil {
		return payroll.Totals{}, 0, fmt.Errorf("failed to summarize payroll records: %w", err)
	}
	return totals, count, nil
}

func (r *payrollRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (payroll.Payroll, error) {
	var updated payroll.Payroll
	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		var status string
		err := q.QueryRow(txCtx, `SELECT status FROM payrolls WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || database.IsPgError(err, database.InvalidTextInput) {
				return payroll.ErrPayrollRecordNotFound
			}
			return fmt.Errorf("failed to lock payroll record: %w", err)
		}
		if payroll.PayrollStatus(status) == payroll.PayrollStatusPaid {
			return payroll.ErrPayrollRecordAlreadyPaid
		}

		_, err = q.Exec(txCtx, `
			UPDATE payrolls SET status = 'paid', paid_at = $2, updated_at = NOW()
			WHERE id = $1`, id, paidAt)
		if err != nil {
			return fmt.Errorf("failed to mark payroll record paid: %w", err)
		}

		updated, err = r.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return payroll.Payroll{}, err
	}
	return updated, nil
}
