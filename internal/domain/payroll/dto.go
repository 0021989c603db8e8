package payroll

import (
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

type PayrollFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // period, net_salary, employee_name
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *PayrollFilter) Validate() error {
	errs := validator.Pagination(&f.Page, &f.Limit, 100)

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if f.Year != nil && (*f.Year < 2000 || *f.Year > 2100) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if f.Status != nil && !PayrollStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: ErrInvalidStatus.Error(),
		})
	}

	if f.SortBy == "" {
		f.SortBy = "period"
	} else if !validator.IsInSlice(f.SortBy, []string{"period", "net_salary", "employee_name"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: period, net_salary, employee_name",
		})
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
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

type PayrollResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	EmployeeCode string  `json:"employee_code"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Period       string  `json:"period"` // YYYY-MM
	BaseSalary   string  `json:"base_salary"`
	Allowances   string  `json:"allowances"`
	Deductions   string  `json:"deductions"`
	OvertimePay  string  `json:"overtime_pay"`
	NetSalary    string  `json:"net_salary"`
	Status       string  `json:"status"`
	PaidAt       *string `json:"paid_at,omitempty"`
}

type TotalsResponse struct {
	BaseSalary  string `json:"base_salary"`
	Allowances  string `json:"allowances"`
	Deductions  string `json:"deductions"`
	OvertimePay string `json:"overtime_pay"`
	NetSalary   string `json:"net_salary"`
}

type ListPayrollResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Totals     TotalsResponse    `json:"totals"`
	Payrolls   []PayrollResponse `json:"payrolls"`
}
