package employee

import (
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const MinPasswordLength = 6

type CreateEmployeeRequest struct {
	EmployeeCode              string          `json:"employee_code"`
	FullName                  string          `json:"full_name"`
	Password                  string          `json:"password"`
	Role                      string          `json:"role"`
	Permissions               []string        `json:"permissions"`
	ContractType              string          `json:"contract_type"`
	CustomCheckInTime         *string         `json:"custom_check_in_time,omitempty"`
	CustomCheckOutTime        *string         `json:"custom_check_out_time,omitempty"`
	HireDate                  string          `json:"hire_date"`
	Status                    string          `json:"status"`
	BaseSalary                decimal.Decimal `json:"base_salary"`
	DeviceVerificationEnabled bool            `json:"device_verification_enabled"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must be 3-32 letters, digits, '.', '_' or '-'",
		})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if len(r.Password) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: ErrPasswordTooShort.Error(),
		})
	}
	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}
	if r.Status == "" {
		r.Status = string(StatusActive)
	}
	errs = append(errs, validateProfile(r.Role, r.Permissions, r.ContractType, r.CustomCheckInTime, r.CustomCheckOutTime, r.HireDate, r.Status, r.BaseSalary)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID                        string          `json:"-"`
	FullName                  string          `json:"full_name"`
	Password                  *string         `json:"password,omitempty"`
	Role                      string          `json:"role"`
	Permissions               []string        `json:"permissions"`
	ContractType              string          `json:"contract_type"`
	CustomCheckInTime         *string         `json:"custom_check_in_time,omitempty"`
	CustomCheckOutTime        *string         `json:"custom_check_out_time,omitempty"`
	HireDate                  string          `json:"hire_date"`
	Status                    string          `json:"status"`
	BaseSalary                decimal.Decimal `json:"base_salary"`
	DeviceVerificationEnabled bool            `json:"device_verification_enabled"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}
	if r.Password != nil && len(*r.Password) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: ErrPasswordTooShort.Error(),
		})
	}
	errs = append(errs, validateProfile(r.Role, r.Permissions, r.ContractType, r.CustomCheckInTime, r.CustomCheckOutTime, r.HireDate, r.Status, r.BaseSalary)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateProfile(role string, permissions []string, contract string, customIn, customOut *string, hireDate string, status string, salary decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !user.Role(role).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: user.ErrInvalidRole.Error()})
	}
	for _, p := range permissions {
		if !user.Screen(p).IsValid() {
			errs = append(errs, validator.ValidationError{Field: "permissions", Message: user.ErrInvalidScreen.Error() + ": " + p})
			break
		}
	}
	if !ContractType(contract).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "contract_type", Message: ErrInvalidContractType.Error()})
	}
	if customIn != nil && *customIn != "" && !validator.IsValidClockTime(*customIn) {
		errs = append(errs, validator.ValidationError{Field: "custom_check_in_time", Message: "custom_check_in_time must be in HH:MM format"})
	}
	if customOut != nil && *customOut != "" && !validator.IsValidClockTime(*customOut) {
		errs = append(errs, validator.ValidationError{Field: "custom_check_out_time", Message: "custom_check_out_time must be in HH:MM format"})
	}
	if _, ok := validator.IsValidDate(hireDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "hire_date", Message: "hire_date must be in YYYY-MM-DD format"})
	}
	if !Status(status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: ErrInvalidStatus.Error()})
	}
	if salary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "base_salary must not be negative"})
	}
	return errs
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.CurrentPassword) {
		errs = append(errs, validator.ValidationError{Field: "current_password", Message: "current_password is required"})
	}
	if len(r.NewPassword) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{Field: "new_password", Message: ErrPasswordTooShort.Error()})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Search       *string `json:"search,omitempty"`
	Status       *string `json:"status,omitempty"`
	ContractType *string `json:"contract_type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // full_name, employee_code, hire_date
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *EmployeeFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit, 100)

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: ErrInvalidStatus.Error()})
	}
	if f.ContractType != nil && !ContractType(*f.ContractType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "contract_type", Message: ErrInvalidContractType.Error()})
	}

	if f.SortBy == "" {
		f.SortBy = "full_name"
	} else if !validator.IsInSlice(f.SortBy, []string{"full_name", "employee_code", "hire_date"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: full_name, employee_code, hire_date",
		})
	}
	if f.SortOrder == "" {
		f.SortOrder = "asc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID                        string   `json:"id"`
	EmployeeCode              string   `json:"employee_code"`
	FullName                  string   `json:"full_name"`
	Role                      string   `json:"role"`
	Permissions               []string `json:"permissions"`
	ContractType              string   `json:"contract_type"`
	CustomCheckInTime         *string  `json:"custom_check_in_time,omitempty"`
	CustomCheckOutTime        *string  `json:"custom_check_out_time,omitempty"`
	HireDate                  string   `json:"hire_date"`
	Status                    string   `json:"status"`
	BaseSalary                string   `json:"base_salary"`
	DeviceVerificationEnabled bool     `json:"device_verification_enabled"`
	DeviceID                  *string  `json:"device_id,omitempty"`
	CreatedAt                 string   `json:"created_at"`
	UpdatedAt                 string   `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}
