package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee hashes the password before storing the account
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee soft deletes an employee
	DeleteEmployee(ctx context.Context, id string) error

	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// ResetDevice clears the bound device so the next scan can bind a new one
	ResetDevice(ctx context.Context, id string) error

	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}
