package payroll

import "errors"

var (
	ErrPayrollRecordNotFound    = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyPaid = errors.New("payroll record already paid")
	ErrInvalidPeriod            = errors.New("invalid payroll period")
	ErrInvalidStatus            = errors.New("status must be paid or pending")
)
