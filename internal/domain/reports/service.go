package reports

import (
	"context"

	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
)

type AdminStats struct {
	Employees   int `json:"employees"`
	Payslips    int `json:"payslips"`
	SalaryItems int `json:"salaryItems"`
}

type HRDashboard struct {
	Period          period.Period `json:"period"`
	ActiveEmployees int           `json:"activeEmployees"`
	LeavePending    int           `json:"leavePending"`
	PeriodPayslips  int           `json:"periodPayslips"`
	Notices         int           `json:"notices"`
}

type EmployeeDashboard struct {
	PayslipMonths []string `json:"payslipMonths"`
	LeavePending  int      `json:"leavePending"`
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	var out AdminStats
	var err error
	if out.Employees, err = s.Store.EmployeeCount(ctx); err != nil {
		return AdminStats{}, apperr.Remote("count employees", err)
	}
	if out.Payslips, err = s.Store.PayslipCount(ctx); err != nil {
		return AdminStats{}, apperr.Remote("count payslips", err)
	}
	if out.SalaryItems, err = s.Store.SalaryItemCount(ctx); err != nil {
		return AdminStats{}, apperr.Remote("count salary items", err)
	}
	return out, nil
}

func (s *Service) HRDashboard(ctx context.Context, p period.Period) (HRDashboard, error) {
	out := HRDashboard{Period: p}
	var err error
	if out.ActiveEmployees, err = s.Store.ActiveEmployeeCount(ctx); err != nil {
		return HRDashboard{}, apperr.Remote("count employees", err)
	}
	if out.LeavePending, err = s.Store.LeavePending(ctx); err != nil {
		return HRDashboard{}, apperr.Remote("count pending leave", err)
	}
	if out.PeriodPayslips, err = s.Store.PeriodPayslipCount(ctx, p); err != nil {
		return HRDashboard{}, apperr.Remote("count payslips", err)
	}
	if out.Notices, err = s.Store.NoticeCount(ctx); err != nil {
		return HRDashboard{}, apperr.Remote("count notices", err)
	}
	return out, nil
}

func (s *Service) EmployeeDashboard(ctx context.Context, employeeID string) (EmployeeDashboard, error) {
	out := EmployeeDashboard{PayslipMonths: []string{}}
	if employeeID == "" {
		return out, nil
	}
	var err error
	if out.PayslipMonths, err = s.Store.PayslipMonths(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, apperr.Remote("list payslip months", err)
	}
	if out.LeavePending, err = s.Store.EmployeeLeavePending(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, apperr.Remote("count pending leave", err)
	}
	return out, nil
}

func (s *Service) JobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	runs, err := s.Store.ListJobRuns(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, apperr.Remote("list job runs", err)
	}
	total, err := s.Store.CountJobRuns(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Remote("count job runs", err)
	}
	return runs, total, nil
}
