package payroll

import "context"

type PayrollService interface {
	// ListPayrolls returns one page of rows plus totals over the whole filter
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	MarkPaid(ctx context.Context, id string) (PayrollResponse, error)
}
