package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	now         func() time.Time
}

func NewPayrollService(payrollRepo payroll.PayrollRepository) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo: payrollRepo,
		now:         time.Now,
	}
}

// ListPayrolls implements payroll.PayrollService. Totals cover every row
// matching the filter, not only the current page.
func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	var (
		rows   []payroll.Payroll
		total  int64
		totals payroll.Totals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, total, err = s.payrollRepo.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list payrolls: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, _, err = s.payrollRepo.Summarize(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to summarize payrolls: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return payroll.ListPayrollResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Totals:     mapTotalsToResponse(totals),
		Payrolls:   mapToResponses(rows),
	}, nil
}

// GetPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return payroll.PayrollResponse{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return mapToResponse(record), nil
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return payroll.PayrollResponse{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	if record.Status == payroll.PayrollStatusPaid {
		return payroll.PayrollResponse{}, payroll.ErrPayrollRecordAlreadyPaid
	}

	paid, err := s.payrollRepo.MarkPaid(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid) {
			return payroll.PayrollResponse{}, payroll.ErrPayrollRecordAlreadyPaid
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to mark payroll as paid: %w", err)
	}

	slog.Info("payroll marked as paid", "payroll_id", id, "employee_id", paid.EmployeeID, "paid_by", session.EmployeeID)
	return mapToResponse(paid), nil
}

func mapToResponse(r payroll.Payroll) payroll.PayrollResponse {
	var paidAtStr *string
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAtStr = &str
	}

	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	return payroll.PayrollResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: employeeName,
		EmployeeCode: employeeCode,
		Month:        r.Month,
		Year:         r.Year,
		Period:       fmt.Sprintf("%04d-%02d", r.Year, r.Month),
		BaseSalary:   r.BaseSalary.StringFixed(2),
		Allowances:   r.Allowances.StringFixed(2),
		Deductions:   r.Deductions.StringFixed(2),
		OvertimePay:  r.OvertimePay.StringFixed(2),
		NetSalary:    r.NetSalary.StringFixed(2),
		Status:       string(r.Status),
		PaidAt:       paidAtStr,
	}
}

func mapToResponses(records []payroll.Payroll) []payroll.PayrollResponse {
	result := make([]payroll.PayrollResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToResponse(r))
	}
	return result
}

func mapTotalsToResponse(t payroll.Totals) payroll.TotalsResponse {
	return payroll.TotalsResponse{
		BaseSalary:  t.BaseSalary.StringFixed(2),
		Allowances:  t.Allowances.StringFixed(2),
		Deductions:  t.Deductions.StringFixed(2),
		OvertimePay: t.OvertimePay.StringFixed(2),
		NetSalary:   t.NetSalary.StringFixed(2),
	}
}
