package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"hrms/internal/domain/period"
	"hrms/internal/platform/db"
	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(q querier.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	beginner, ok := s.DB.(querier.TxBeginner)
	if !ok {
		return fn(s)
	}
	return db.WithTx(ctx, beginner, func(q querier.Querier) error {
		return fn(NewStore(q))
	})
}

func (s *Store) ListEmployees(ctx context.Context) ([]EmployeeRef, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM crews ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeRef
	for rows.Next() {
		var e EmployeeRef
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM crews WHERE id = $1)", employeeID).Scan(&exists)
	return exists, err
}

const compensationColumns = "id, crew_id, basic_salary, effective_from, is_active, created_at"

func scanCompensation(row pgx.Row) (CompensationRecord, error) {
	var rec CompensationRecord
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.BasicSalary, &rec.EffectiveFrom, &rec.IsActive, &rec.CreatedAt)
	return rec, err
}

func (s *Store) ActiveCompensations(ctx context.Context) (map[string]CompensationRecord, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+compensationColumns+" FROM crew_compensation WHERE is_active")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]CompensationRecord{}
	for rows.Next() {
		rec, err := scanCompensation(rows)
		if err != nil {
			return nil, err
		}
		out[rec.EmployeeID] = rec
	}
	return out, rows.Err()
}

// ActiveCompensation returns nil when the employee has no active record.
func (s *Store) ActiveCompensation(ctx context.Context, employeeID string) (*CompensationRecord, error) {
	rec, err := scanCompensation(s.DB.QueryRow(ctx, `
    SELECT `+compensationColumns+`
    FROM crew_compensation
    WHERE crew_id = $1 AND is_active
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) CompensationHistory(ctx context.Context, employeeID string) ([]CompensationRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+compensationColumns+`
    FROM crew_compensation
    WHERE crew_id = $1
    ORDER BY effective_from DESC, created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompensationRecord
	for rows.Next() {
		rec, err := scanCompensation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) InsertCompensation(ctx context.Context, rec CompensationRecord) (CompensationRecord, error) {
	return scanCompensation(s.DB.QueryRow(ctx, `
    INSERT INTO crew_compensation (crew_id, basic_salary, effective_from, is_active)
    VALUES ($1,$2,$3,$4)
    RETURNING `+compensationColumns,
		rec.EmployeeID, rec.BasicSalary.Decimal, rec.EffectiveFrom, rec.IsActive))
}

func (s *Store) UpdateCompensationAmount(ctx context.Context, recordID string, amount decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, "UPDATE crew_compensation SET basic_salary = $1 WHERE id = $2", amount, recordID)
	return err
}

func (s *Store) DeactivateCompensation(ctx context.Context, recordID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE crew_compensation SET is_active = false WHERE id = $1", recordID)
	return err
}

func (s *Store) AdjustmentsForPeriod(ctx context.Context, p period.Period) (map[string]MonthlySalaryAdjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT crew_id, allowance, overtime, bonus, unutilised_leave_pay, unpaid_leave_deduction, advance_deduction, adjustment
    FROM salary_items
    WHERE month = $1
  `, p.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]MonthlySalaryAdjustment{}
	for rows.Next() {
		adj := MonthlySalaryAdjustment{Period: p}
		if err := rows.Scan(&adj.EmployeeID, &adj.Allowance, &adj.Overtime, &adj.Bonus, &adj.UnutilisedLeavePay, &adj.UnpaidLeaveDeduction, &adj.AdvanceDeduction, &adj.Adjustment); err != nil {
			return nil, err
		}
		out[adj.EmployeeID] = adj
	}
	return out, rows.Err()
}

// UpsertAdjustments writes all rows in one batch keyed on (crew_id, month).
func (s *Store) UpsertAdjustments(ctx context.Context, adjs []MonthlySalaryAdjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range adjs {
		batch.Queue(`
      INSERT INTO salary_items (crew_id, month, allowance, overtime, bonus, unutilised_leave_pay, unpaid_leave_deduction, advance_deduction, adjustment)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
      ON CONFLICT (crew_id, month) DO UPDATE SET
        allowance = EXCLUDED.allowance,
        overtime = EXCLUDED.overtime,
        bonus = EXCLUDED.bonus,
        unutilised_leave_pay = EXCLUDED.unutilised_leave_pay,
        unpaid_leave_deduction = EXCLUDED.unpaid_leave_deduction,
        advance_deduction = EXCLUDED.advance_deduction,
        adjustment = EXCLUDED.adjustment,
        updated_at = now()
    `, a.EmployeeID, a.Period.String(), a.Allowance.Decimal, a.Overtime.Decimal, a.Bonus.Decimal,
			a.UnutilisedLeavePay.Decimal, a.UnpaidLeaveDeduction.Decimal, a.AdvanceDeduction.Decimal, a.Adjustment.Decimal)
	}
	sender, ok := s.DB.(batchSender)
	if !ok {
		return errors.New("store connection does not support batches")
	}
	results := sender.SendBatch(ctx, batch)
	for range adjs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (s *Store) PayslipEmployeeIDs(ctx context.Context, p period.Period) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx, "SELECT crew_id FROM payslips WHERE month = $1", p.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

const payslipColumns = `
  ps.id, ps.crew_id, c.name, ps.month,
  ps.basic_salary, ps.allowance, ps.overtime, ps.bonus,
  ps.unutilised_leave_pay, ps.unpaid_leave_deduction, ps.advance_deduction, ps.adjustment,
  ps.gross, ps.employee_deduction, ps.sdl, ps.welfare, ps.net_pay, ps.created_at`

func payslipDest(ps *Payslip, month *string) []any {
	return []any{
		&ps.ID, &ps.EmployeeID, &ps.EmployeeName, month,
		&ps.BasicSalary, &ps.Allowance, &ps.Overtime, &ps.Bonus,
		&ps.UnutilisedLeavePay, &ps.UnpaidLeaveDeduction, &ps.AdvanceDeduction, &ps.Adjustment,
		&ps.Gross, &ps.EmployeeDeduction, &ps.SDL, &ps.Welfare, &ps.NetPay, &ps.CreatedAt,
	}
}

func (s *Store) queryPayslips(ctx context.Context, sql string, args ...any) ([]Payslip, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payslip
	for rows.Next() {
		var ps Payslip
		var month string
		if err := rows.Scan(payslipDest(&ps, &month)...); err != nil {
			return nil, err
		}
		if ps.Period, err = period.Parse(month); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (s *Store) ListPayslips(ctx context.Context, p period.Period) ([]Payslip, error) {
	return s.queryPayslips(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips ps
    JOIN crews c ON c.id = ps.crew_id
    WHERE ps.month = $1
    ORDER BY c.name, ps.crew_id
  `, p.String())
}

func (s *Store) ListPayslipsForEmployee(ctx context.Context, employeeID string) ([]Payslip, error) {
	return s.queryPayslips(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips ps
    JOIN crews c ON c.id = ps.crew_id
    WHERE ps.crew_id = $1
    ORDER BY ps.month DESC
  `, employeeID)
}

func (s *Store) GetPayslip(ctx context.Context, employeeID string, p period.Period) (SealedPayslip, error) {
	var out SealedPayslip
	var month string
	var bankName, employeeNo *string
	dest := append(payslipDest(&out.Payslip, &month), &employeeNo, &out.NRICSealed, &bankName, &out.AccountSealed)
	err := s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`, c.employee_no, c.nric_enc, c.bank_name, c.bank_account_enc
    FROM payslips ps
    JOIN crews c ON c.id = ps.crew_id
    WHERE ps.crew_id = $1 AND ps.month = $2
  `, employeeID, p.String()).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return SealedPayslip{}, ErrPayslipNotFound
	}
	if err != nil {
		return SealedPayslip{}, err
	}
	out.Period = p
	if bankName != nil {
		out.BankName = *bankName
	}
	if employeeNo != nil {
		out.EmployeeNo = *employeeNo
	}
	return out, nil
}

// SQLEngine calls the run_payroll and run_payroll_preview database functions.
type SQLEngine struct {
	DB querier.Querier
}

func NewSQLEngine(q querier.Querier) *SQLEngine {
	return &SQLEngine{DB: q}
}

func (e *SQLEngine) Run(ctx context.Context, p period.Period) (int, error) {
	var count int
	if err := e.DB.QueryRow(ctx, "SELECT run_payroll($1)", p.String()).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (e *SQLEngine) Preview(ctx context.Context, employeeID string, p period.Period) (Preview, error) {
	out := Preview{EmployeeID: employeeID, Period: p}
	err := e.DB.QueryRow(ctx, `
    SELECT COALESCE(gross, 0), COALESCE(employee_deduction, 0), COALESCE(net_pay, 0)
    FROM run_payroll_preview($1, $2)
  `, employeeID, p.String()).Scan(&out.Gross, &out.EmployeeDeduction, &out.NetPay)
	if errors.Is(err, pgx.ErrNoRows) {
		return Preview{}, ErrPreviewEmpty
	}
	if err != nil {
		return Preview{}, err
	}
	return out, nil
}
