package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, password_hash, role, permissions, contract_type,
	custom_check_in_time, custom_check_out_time, hire_date, status, base_salary,
	device_verification_enabled, device_id, created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	var role, contract, status string
	var permissions []string
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.PasswordHash, &role, &permissions, &contract,
		&emp.CustomCheckInTime, &emp.CustomCheckOutTime, &emp.HireDate, &status, &emp.BaseSalary,
		&emp.DeviceVerificationEnabled, &emp.DeviceID, &emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	emp.Role = user.Role(role)
	emp.Permissions = user.ParseScreens(permissions)
	emp.ContractType = employee.ContractType(contract)
	emp.Status = employee.Status(status)
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsPgError(err, database.InvalidTextInput) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_code = $1 AND deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, employeeCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with code %s: %w", employeeCode, err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			id, employee_code, full_name, password_hash, role, permissions, contract_type,
			custom_check_in_time, custom_check_out_time, hire_date, status, base_salary,
			device_verification_enabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID,
		newEmployee.EmployeeCode,
		newEmployee.FullName,
		newEmployee.PasswordHash,
		string(newEmployee.Role),
		user.ScreenStrings(newEmployee.Permissions),
		string(newEmployee.ContractType),
		newEmployee.CustomCheckInTime,
		newEmployee.CustomCheckOutTime,
		newEmployee.HireDate,
		string(newEmployee.Status),
		newEmployee.BaseSalary,
		newEmployee.DeviceVerificationEnabled,
	))
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// Update implements employee.EmployeeRepository. Password and device are
// changed through their own methods.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET
			full_name = $2,
			role = $3,
			permissions = $4,
			contract_type = $5,
			custom_check_in_time = $6,
			custom_check_out_time = $7,
			hire_date = $8,
			status = $9,
			base_salary = $10,
			device_verification_enabled = $11,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + employeeColumns

	updated, err := scanEmployee(q.QueryRow(ctx, query,
		emp.ID,
		emp.FullName,
		string(emp.Role),
		user.ScreenStrings(emp.Permissions),
		string(emp.ContractType),
		emp.CustomCheckInTime,
		emp.CustomCheckOutTime,
		emp.HireDate,
		string(emp.Status),
		emp.BaseSalary,
		emp.DeviceVerificationEnabled,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee with id %s: %w", emp.ID, err)
	}
	return updated, nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// BindDevice implements employee.EmployeeRepository. Binding the device that
// is already bound is a no-op.
func (e *employeeRepositoryImpl) BindDevice(ctx context.Context, id string, deviceID string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET device_id = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND (device_id IS NULL OR device_id = '' OR device_id = $2)
		RETURNING id
	`
	var boundID string
	err := q.QueryRow(ctx, query, id, deviceID).Scan(&boundID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to bind device for employee with id %s: %w", id, err)
	}

	// Nothing updated: either the employee is gone or another device won.
	if _, err := e.GetByID(ctx, id); err != nil {
		return err
	}
	return employee.ErrDeviceAlreadyBound
}

// ResetDevice implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ResetDevice(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees SET device_id = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset device for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SoftDelete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to soft delete employee: %w", err)
	}

	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	// Build WHERE conditions
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR employee_code ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ContractType != nil && *filter.ContractType != "" {
		conditions = append(conditions, fmt.Sprintf("contract_type = $%d", argIdx))
		args = append(args, *filter.ContractType)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	// Validate sort column
	validSortColumns := map[string]string{
		"full_name":     "full_name",
		"employee_code": "employee_code",
		"hire_date":     "hire_date",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "full_name"
	}

	sortOrder := "ASC"
	if strings.ToUpper(filter.SortOrder) == "DESC" {
		sortOrder = "DESC"
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// CountByStatus implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CountByStatus(ctx context.Context) (map[employee.Status]int64, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT status, COUNT(*)
		FROM employees
		WHERE deleted_at IS NULL
		GROUP BY status
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[employee.Status]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[employee.Status(status)] = count
	}
	return counts, rows.Err()
}

// GetNames implements employee.EmployeeRepository. Deleted employees keep
// their name so old attendance rows still render.
func (e *employeeRepositoryImpl) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	q := GetQuerier(ctx, e.db)
	rows, err := q.Query(ctx, `SELECT id, full_name FROM employees WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan employee name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
