package employee

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryEmployeeRepo struct {
	employee.EmployeeRepository
	mu   sync.Mutex
	byID map[string]employee.Employee
}

func newMemoryEmployeeRepo(emps ...employee.Employee) *memoryEmployeeRepo {
	r := &memoryEmployeeRepo{byID: make(map[string]employee.Employee)}
	for _, e := range emps {
		r.byID[e.ID] = e
	}
	return r
}

func (r *memoryEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memoryEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.EmployeeCode == e.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}
	r.byID[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.byID[id]
	e.PasswordHash = hash
	r.byID[id] = e
	return nil
}

func (r *memoryEmployeeRepo) ResetDevice(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.DeviceID = nil
	r.byID[id] = e
	return nil
}

func (r *memoryEmployeeRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memoryEmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	total := int64(len(out))
	start := min((filter.Page-1)*filter.Limit, len(out))
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func newTestService(repo employee.EmployeeRepository) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{employeeRepo: repo, bcryptCost: bcrypt.MinCost}
}

func sessionCtx(id string, role user.Role) context.Context {
	return user.WithSession(context.Background(), user.Session{EmployeeID: id, Role: role})
}

func validCreateRequest(code, role string) employee.CreateEmployeeRequest {
	in := "13:00"
	return employee.CreateEmployeeRequest{
		EmployeeCode:              code,
		FullName:                  "Sari Wulandari",
		Password:                  "secret123",
		Role:                      role,
		ContractType:              "full-time",
		CustomCheckInTime:         &in,
		HireDate:                  "2024-03-01",
		BaseSalary:                decimal.NewFromInt(5000000),
		DeviceVerificationEnabled: true,
	}
}

func TestEmployeeService_CreateEmployee(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateEmployee(sessionCtx("hr-1", user.RoleHR), validCreateRequest("EMP010", "employee"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "5000000.00", resp.BaseSalary)
	assert.Nil(t, resp.CustomCheckInTime, "full-time contracts ignore custom times")

	stored := repo.byID[resp.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	_, err = svc.CreateEmployee(sessionCtx("hr-1", user.RoleHR), validCreateRequest("EMP010", "employee"))
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
}

func TestEmployeeService_CreateEmployee_AdminRoleGuard(t *testing.T) {
	svc := newTestService(newMemoryEmployeeRepo())

	_, err := svc.CreateEmployee(sessionCtx("hr-1", user.RoleHR), validCreateRequest("ADM002", "admin"))
	assert.ErrorIs(t, err, employee.ErrHRCannotGrantAdmin)

	_, err = svc.CreateEmployee(sessionCtx("admin-1", user.RoleAdmin), validCreateRequest("ADM002", "admin"))
	assert.NoError(t, err)
}

func TestEmployeeService_UpdateEmployee_OwnRole(t *testing.T) {
	repo := newMemoryEmployeeRepo(employee.Employee{ID: "hr-1", EmployeeCode: "HR001", Role: user.RoleHR, Status: employee.StatusActive})
	svc := newTestService(repo)

	req := employee.UpdateEmployeeRequest{
		ID:           "hr-1",
		FullName:     "Budi",
		Role:         "employee",
		ContractType: "full-time",
		HireDate:     "2023-01-01",
		Status:       "active",
	}
	_, err := svc.UpdateEmployee(sessionCtx("hr-1", user.RoleHR), req)
	assert.ErrorIs(t, err, employee.ErrCannotChangeOwnRole)

	req.Role = "hr"
	resp, err := svc.UpdateEmployee(sessionCtx("hr-1", user.RoleHR), req)
	require.NoError(t, err)
	assert.Equal(t, "Budi", resp.FullName)
}

func TestEmployeeService_UpdateEmployee_AdminTarget(t *testing.T) {
	repo := newMemoryEmployeeRepo(employee.Employee{ID: "admin-1", Role: user.RoleAdmin, Status: employee.StatusActive})
	svc := newTestService(repo)

	_, err := svc.UpdateEmployee(sessionCtx("hr-1", user.RoleHR), employee.UpdateEmployeeRequest{
		ID:           "admin-1",
		FullName:     "Root",
		Role:         "hr",
		ContractType: "full-time",
		HireDate:     "2023-01-01",
		Status:       "active",
	})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestEmployeeService_DeleteEmployee(t *testing.T) {
	repo := newMemoryEmployeeRepo(
		employee.Employee{ID: "hr-1", Role: user.RoleHR},
		employee.Employee{ID: "emp-1", Role: user.RoleEmployee},
	)
	svc := newTestService(repo)

	assert.ErrorIs(t, svc.DeleteEmployee(sessionCtx("hr-1", user.RoleHR), "hr-1"), employee.ErrCannotDeleteSelf)
	require.NoError(t, svc.DeleteEmployee(sessionCtx("hr-1", user.RoleHR), "emp-1"))
	assert.ErrorIs(t, svc.DeleteEmployee(sessionCtx("hr-1", user.RoleHR), "emp-1"), employee.ErrEmployeeNotFound)
}

func TestEmployeeService_GetEmployee_Visibility(t *testing.T) {
	repo := newMemoryEmployeeRepo(
		employee.Employee{ID: "emp-1", FullName: "Andi", Role: user.RoleEmployee},
		employee.Employee{ID: "emp-2", FullName: "Rina", Role: user.RoleEmployee},
	)
	svc := newTestService(repo)

	resp, err := svc.GetEmployee(sessionCtx("emp-1", user.RoleEmployee), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Andi", resp.FullName)

	_, err = svc.GetEmployee(sessionCtx("emp-1", user.RoleEmployee), "emp-2")
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.GetEmployee(sessionCtx("hr-1", user.RoleHR), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_ListEmployees(t *testing.T) {
	repo := newMemoryEmployeeRepo(
		employee.Employee{ID: "1", FullName: "Andi"},
		employee.Employee{ID: "2", FullName: "Budi"},
		employee.Employee{ID: "3", FullName: "Citra"},
	)
	svc := newTestService(repo)

	resp, err := svc.ListEmployees(sessionCtx("hr-1", user.RoleHR), employee.EmployeeFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, "3-3 of 3", resp.Showing)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "Citra", resp.Employees[0].FullName)
}

func TestEmployeeService_ResetDeviceAndChangePassword(t *testing.T) {
	device := "phone-1"
	hash, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMemoryEmployeeRepo(employee.Employee{ID: "emp-1", PasswordHash: string(hash), DeviceID: &device})
	svc := newTestService(repo)

	require.NoError(t, svc.ResetDevice(sessionCtx("hr-1", user.RoleHR), "emp-1"))
	assert.Nil(t, repo.byID["emp-1"].DeviceID)

	ctx := sessionCtx("emp-1", user.RoleEmployee)
	err = svc.ChangePassword(ctx, employee.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-secret"})
	assert.ErrorIs(t, err, employee.ErrInvalidCurrentPassword)

	require.NoError(t, svc.ChangePassword(ctx, employee.ChangePasswordRequest{CurrentPassword: "old-secret", NewPassword: "new-secret"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID["emp-1"].PasswordHash), []byte("new-secret")))
}
