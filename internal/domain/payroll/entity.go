package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusPending PayrollStatus = "pending"
	PayrollStatusPaid    PayrollStatus = "paid"
)

func (s PayrollStatus) IsValid() bool {
	return s == PayrollStatusPending || s == PayrollStatusPaid
}

// Payroll is one stored pay slip for an employee and month. Amounts are
// entered by HR; nothing here derives them.
type Payroll struct {
	ID          string
	EmployeeID  string
	Month       int
	Year        int
	BaseSalary  decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	OvertimePay decimal.Decimal
	NetSalary   decimal.Decimal
	Status      PayrollStatus
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// Totals sums the money columns of a set of payroll rows.
type Totals struct {
	BaseSalary  decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	OvertimePay decimal.Decimal
	NetSalary   decimal.Decimal
}

func (t Totals) Add(p Payroll) Totals {
	return Totals{
		BaseSalary:  t.BaseSalary.Add(p.BaseSalary),
		Allowances:  t.Allowances.Add(p.Allowances),
		Deductions:  t.Deductions.Add(p.Deductions),
		OvertimePay: t.OvertimePay.Add(p.OvertimePay),
		NetSalary:   t.NetSalary.Add(p.NetSalary),
	}
}

// Sum folds rows into Totals.
func Sum(rows []Payroll) Totals {
	var t Totals
	for _, p := range rows {
		t = t.Add(p)
	}
	return t
}
