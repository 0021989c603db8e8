package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound for unknown or deleted employees.
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmployeeCode(ctx context.Context, employeeCode string) (Employee, error)
	// Create returns ErrEmployeeCodeExists when the login code is taken.
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	// BindDevice sets the device id only while none is bound.
	BindDevice(ctx context.Context, id string, deviceID string) error
	ResetDevice(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	GetNames(ctx context.Context, ids []string) (map[string]string, error)
}
