package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	bcryptCost   int
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// authorizeRole checks that the session may hand out role. Only admins grant
// admin or touch admin accounts.
func authorizeRole(session user.Session, role user.Role, target *employee.Employee) error {
	if session.IsAdmin() {
		return nil
	}
	if role == user.RoleAdmin {
		return employee.ErrHRCannotGrantAdmin
	}
	if target != nil && target.Role == user.RoleAdmin {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:                        emp.ID,
		EmployeeCode:              emp.EmployeeCode,
		FullName:                  emp.FullName,
		Role:                      string(emp.Role),
		Permissions:               user.ScreenStrings(emp.Permissions),
		ContractType:              string(emp.ContractType),
		CustomCheckInTime:         emp.CustomCheckInTime,
		CustomCheckOutTime:        emp.CustomCheckOutTime,
		HireDate:                  emp.HireDate.Format("2006-01-02"),
		Status:                    string(emp.Status),
		BaseSalary:                emp.BaseSalary.StringFixed(2),
		DeviceVerificationEnabled: emp.DeviceVerificationEnabled,
		DeviceID:                  emp.DeviceID,
		CreatedAt:                 emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 emp.UpdatedAt.Format(time.RFC3339),
	}
}

// customTimes drops custom clock times for full-time contracts.
func customTimes(contract employee.ContractType, in, out *string) (*string, *string) {
	if contract != employee.ContractPartTime {
		return nil, nil
	}
	if in != nil && *in == "" {
		in = nil
	}
	if out != nil && *out == "" {
		out = nil
	}
	return in, out
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Employees without the employees screen can only view themselves
	if session.EmployeeID != id && !user.CanAccess(session, user.ScreenEmployees) {
		return employee.EmployeeResponse{}, user.ErrInsufficientPermissions
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return mapEmployeeToResponse(emp), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	role := user.Role(req.Role)
	if err := authorizeRole(session, role, nil); err != nil {
		return employee.EmployeeResponse{}, err
	}

	passwordHash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, _ := time.Parse("2006-01-02", req.HireDate)
	contract := employee.ContractType(req.ContractType)
	customIn, customOut := customTimes(contract, req.CustomCheckInTime, req.CustomCheckOutTime)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:                        id.String(),
		EmployeeCode:              req.EmployeeCode,
		FullName:                  req.FullName,
		PasswordHash:              passwordHash,
		Role:                      role,
		Permissions:               user.ParseScreens(req.Permissions),
		ContractType:              contract,
		CustomCheckInTime:         customIn,
		CustomCheckOutTime:        customOut,
		HireDate:                  hireDate,
		Status:                    employee.Status(req.Status),
		BaseSalary:                req.BaseSalary,
		DeviceVerificationEnabled: req.DeviceVerificationEnabled,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeCodeExists) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("employee created", "employee_id", created.ID, "role", created.Role, "created_by", session.EmployeeID)
	return mapEmployeeToResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	existing, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	role := user.Role(req.Role)
	if session.EmployeeID == existing.ID && role != existing.Role {
		return employee.EmployeeResponse{}, employee.ErrCannotChangeOwnRole
	}
	if err := authorizeRole(session, role, &existing); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, _ := time.Parse("2006-01-02", req.HireDate)
	contract := employee.ContractType(req.ContractType)
	customIn, customOut := customTimes(contract, req.CustomCheckInTime, req.CustomCheckOutTime)

	existing.FullName = req.FullName
	existing.Role = role
	existing.Permissions = user.ParseScreens(req.Permissions)
	existing.ContractType = contract
	existing.CustomCheckInTime = customIn
	existing.CustomCheckOutTime = customOut
	existing.HireDate = hireDate
	existing.Status = employee.Status(req.Status)
	existing.BaseSalary = req.BaseSalary
	existing.DeviceVerificationEnabled = req.DeviceVerificationEnabled

	updated, err := s.employeeRepo.Update(ctx, existing)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}

	if req.Password != nil {
		passwordHash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return employee.EmployeeResponse{}, err
		}
		if err := s.employeeRepo.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to update password: %w", err)
		}
	}

	return mapEmployeeToResponse(updated), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	// Prevent self-deletion
	if session.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	target, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if err := authorizeRole(session, target.Role, &target); err != nil {
		return err
	}

	if err := s.employeeRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	slog.Info("employee deleted", "employee_id", id, "deleted_by", session.EmployeeID)
	return nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// ResetDevice implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ResetDevice(ctx context.Context, id string) error {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.employeeRepo.ResetDevice(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to reset device: %w", err)
	}

	slog.Info("employee device reset", "employee_id", id, "reset_by", session.EmployeeID)
	return nil
}

// ChangePassword implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ChangePassword(ctx context.Context, req employee.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByID(ctx, session.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return employee.ErrInvalidCurrentPassword
	}

	passwordHash, err := hashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.employeeRepo.UpdatePassword(ctx, emp.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
