package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hrms/internal/domain/period"
	"hrms/internal/platform/apperr"
	"hrms/internal/platform/jobs"
)

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type Opener interface {
	OpenString(sealed []byte) (string, error)
}

type RunObserver interface {
	PayrollRun(status string)
}

type Service struct {
	Store  StoreAPI
	Engine Engine
	Jobs   JobRunner
	Audit  AuditRecorder
	Cipher Opener
	Obs    RunObserver
	// AtomicCompensation wraps the deactivate-then-insert of a salary change
	// in one transaction. Off by default.
	AtomicCompensation bool
	now                func() time.Time
}

func NewService(store StoreAPI, engine Engine) *Service {
	return &Service{Store: store, Engine: engine, now: time.Now}
}

type CompensationChange struct {
	Kind     ChangeKind          `json:"kind"`
	Record   CompensationRecord  `json:"record"`
	Previous *CompensationRecord `json:"previous,omitempty"`
}

func (s *Service) SalaryRows(ctx context.Context, p period.Period) ([]EditableRow, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, apperr.Remote("list employees", err)
	}
	comps, err := s.Store.ActiveCompensations(ctx)
	if err != nil {
		return nil, apperr.Remote("load compensation", err)
	}
	adjs, err := s.Store.AdjustmentsForPeriod(ctx, p)
	if err != nil {
		return nil, apperr.Remote("load salary items", err)
	}
	withPayslip, err := s.Store.PayslipEmployeeIDs(ctx, p)
	if err != nil {
		return nil, apperr.Remote("load payslips", err)
	}
	return MergeRows(p, employees, comps, adjs, withPayslip), nil
}

// SaveSalaryRows upserts every row for the period. Basic salary in the rows
// is ignored; it only changes through SetSalary.
func (s *Service) SaveSalaryRows(ctx context.Context, p period.Period, rows []EditableRow) (int, error) {
	fields := map[string]string{}
	adjs := make([]MonthlySalaryAdjustment, 0, len(rows))
	for i, row := range rows {
		if row.EmployeeID == "" {
			fields[fmt.Sprintf("rows[%d].employeeId", i)] = "is required"
			continue
		}
		id, err := uuid.Parse(row.EmployeeID)
		if err != nil {
			fields[fmt.Sprintf("rows[%d].employeeId", i)] = "must be a valid UUID"
			continue
		}
		row.EmployeeID = id.String()
		row.Period = p
		adjs = append(adjs, ToPersistedAdjustment(row))
	}
	if len(fields) > 0 {
		return 0, apperr.Validation("salary rows invalid", fields)
	}
	if err := s.Store.UpsertAdjustments(ctx, adjs); err != nil {
		return 0, apperr.Remote("save salary items", err)
	}
	s.audit(ctx, "payroll.salary_items.save", "salary_items", p.String(), nil, map[string]any{"rows": len(adjs)})
	return len(adjs), nil
}

func (s *Service) SetSalary(ctx context.Context, employeeID string, amount decimal.Decimal, date time.Time) (CompensationChange, error) {
	if amount.IsNegative() {
		return CompensationChange{}, apperr.Validation("basic salary invalid", map[string]string{"basicSalary": "must not be negative"})
	}
	exists, err := s.Store.EmployeeExists(ctx, employeeID)
	if err != nil {
		return CompensationChange{}, apperr.Remote("lookup employee", err)
	}
	if !exists {
		return CompensationChange{}, apperr.NotFound("employee")
	}
	if date.IsZero() {
		date = s.now()
	}

	var change CompensationChange
	apply := func(st StoreAPI) error {
		current, err := st.ActiveCompensation(ctx, employeeID)
		if err != nil {
			return apperr.Remote("load active compensation", err)
		}
		change, err = applyCompensationPlan(ctx, st, employeeID, PlanCompensationChange(current, amount, date))
		return err
	}
	if s.AtomicCompensation {
		err = s.Store.InTx(ctx, apply)
	} else {
		err = apply(s.Store)
	}
	if err != nil {
		return CompensationChange{}, err
	}
	s.audit(ctx, "payroll.compensation."+string(change.Kind), "crew_compensation", change.Record.ID, change.Previous, change.Record)
	return change, nil
}

func applyCompensationPlan(ctx context.Context, st StoreAPI, employeeID string, plan CompensationPlan) (CompensationChange, error) {
	change := CompensationChange{Kind: plan.Kind}
	switch plan.Kind {
	case ChangeUpdateInPlace:
		if err := st.UpdateCompensationAmount(ctx, plan.Current.ID, plan.Amount); err != nil {
			return change, apperr.Remote("update compensation", err)
		}
		rec := *plan.Current
		rec.BasicSalary = NewAmount(plan.Amount)
		change.Record = rec
		return change, nil
	case ChangeSupersede:
		if err := st.DeactivateCompensation(ctx, plan.Current.ID); err != nil {
			return change, apperr.Remote("deactivate compensation", err)
		}
		prev := *plan.Current
		prev.IsActive = false
		change.Previous = &prev
	}
	rec, err := st.InsertCompensation(ctx, CompensationRecord{
		EmployeeID:    employeeID,
		BasicSalary:   NewAmount(plan.Amount),
		EffectiveFrom: plan.Date,
		IsActive:      true,
	})
	if err != nil {
		return change, apperr.Remote("insert compensation", err)
	}
	change.Record = rec
	return change, nil
}

func (s *Service) CompensationHistory(ctx context.Context, employeeID string) ([]CompensationRecord, error) {
	history, err := s.Store.CompensationHistory(ctx, employeeID)
	if err != nil {
		return nil, apperr.Remote("load compensation history", err)
	}
	return history, nil
}

// Run invokes the payroll procedure for the period once. Failures are
// reported as-is and never retried.
func (s *Service) Run(ctx context.Context, p period.Period) (RunResult, error) {
	run := func(ctx context.Context) (any, error) {
		n, err := s.Engine.Run(ctx, p)
		if err != nil {
			return nil, err
		}
		return RunResult{Period: p, Payslips: n}, nil
	}

	var out any
	var err error
	if s.Jobs != nil {
		out, err = s.Jobs.RunNow(ctx, jobs.JobPayrollRun, run)
	} else {
		out, err = run(ctx)
	}
	if err != nil {
		s.observe(jobs.StatusFailed)
		return RunResult{}, apperr.Remote("run payroll", err)
	}
	s.observe(jobs.StatusCompleted)
	result, _ := out.(RunResult)
	s.audit(ctx, "payroll.run", "payroll", p.String(), nil, result)
	return result, nil
}

func (s *Service) Preview(ctx context.Context, employeeID string, p period.Period) (Preview, error) {
	preview, err := s.Engine.Preview(ctx, employeeID, p)
	if errors.Is(err, ErrPreviewEmpty) {
		return Preview{}, apperr.NotFound("employee")
	}
	if err != nil {
		return Preview{}, apperr.Remote("preview payroll", err)
	}
	return preview, nil
}

func (s *Service) Payslips(ctx context.Context, p period.Period) ([]Payslip, error) {
	out, err := s.Store.ListPayslips(ctx, p)
	if err != nil {
		return nil, apperr.Remote("list payslips", err)
	}
	return out, nil
}

func (s *Service) EmployeePayslips(ctx context.Context, employeeID string) ([]Payslip, error) {
	out, err := s.Store.ListPayslipsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Remote("list payslips", err)
	}
	return out, nil
}

// CanViewPayslip reports whether a caller may see employeeID's payslip. A
// caller linked to an employee record may only see their own; callers without
// a record (HR and admin accounts) may see any.
func CanViewPayslip(callerEmployeeID, employeeID string) bool {
	return callerEmployeeID == "" || callerEmployeeID == employeeID
}

func (s *Service) Payslip(ctx context.Context, callerEmployeeID, employeeID string, p period.Period) (PayslipDetail, error) {
	if !CanViewPayslip(callerEmployeeID, employeeID) {
		return PayslipDetail{}, apperr.Authorization("payslip belongs to another employee")
	}
	sealed, err := s.Store.GetPayslip(ctx, employeeID, p)
	if errors.Is(err, ErrPayslipNotFound) {
		return PayslipDetail{}, apperr.NotFound("payslip")
	}
	if err != nil {
		return PayslipDetail{}, apperr.Remote("load payslip", err)
	}

	detail := PayslipDetail{Payslip: sealed.Payslip, EmployeeNo: sealed.EmployeeNo, BankName: sealed.BankName}
	if detail.EmployeeNo == "" {
		detail.EmployeeNo = lastN(employeeID, 8)
	}
	if detail.NRIC, err = s.open(sealed.NRICSealed); err != nil {
		return PayslipDetail{}, fmt.Errorf("open nric: %w", err)
	}
	if detail.AccountNumber, err = s.open(sealed.AccountSealed); err != nil {
		return PayslipDetail{}, fmt.Errorf("open bank account: %w", err)
	}
	return detail, nil
}

func (s *Service) open(sealed []byte) (string, error) {
	if s.Cipher == nil {
		return string(sealed), nil
	}
	return s.Cipher.OpenString(sealed)
}

func (s *Service) observe(status string) {
	if s.Obs != nil {
		s.Obs.PayrollRun(status)
	}
}

func (s *Service) audit(ctx context.Context, action, entityType, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
