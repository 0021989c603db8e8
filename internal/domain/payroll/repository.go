package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	GetByID(ctx context.Context, id string) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
	// Summarize totals every row matching filter, ignoring pagination.
	Summarize(ctx context.Context, filter PayrollFilter) (Totals, int64, error)
	// MarkPaid only moves pending rows; a paid row yields ErrPayrollRecordAlreadyPaid.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (Payroll, error)
}
