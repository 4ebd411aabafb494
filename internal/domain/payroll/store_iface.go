package payroll

import (
	"context"

	"github.com/shopspring/decimal"

	"hrms/internal/domain/period"
)

type StoreAPI interface {
	ListEmployees(ctx context.Context) ([]EmployeeRef, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)

	ActiveCompensations(ctx context.Context) (map[string]CompensationRecord, error)
	ActiveCompensation(ctx context.Context, employeeID string) (*CompensationRecord, error)
	CompensationHistory(ctx context.Context, employeeID string) ([]CompensationRecord, error)
	InsertCompensation(ctx context.Context, rec CompensationRecord) (CompensationRecord, error)
	UpdateCompensationAmount(ctx context.Context, recordID string, amount decimal.Decimal) error
	DeactivateCompensation(ctx context.Context, recordID string) error

	AdjustmentsForPeriod(ctx context.Context, p period.Period) (map[string]MonthlySalaryAdjustment, error)
	UpsertAdjustments(ctx context.Context, adjs []MonthlySalaryAdjustment) error

	PayslipEmployeeIDs(ctx context.Context, p period.Period) (map[string]bool, error)
	ListPayslips(ctx context.Context, p period.Period) ([]Payslip, error)
	ListPayslipsForEmployee(ctx context.Context, employeeID string) ([]Payslip, error)
	GetPayslip(ctx context.Context, employeeID string, p period.Period) (SealedPayslip, error)

	// InTx runs fn against a store bound to a single transaction.
	InTx(ctx context.Context, fn func(StoreAPI) error) error
}

// Engine is the payroll procedure. It is opaque to the service: Run turns
// compensation and adjustments into payslips for a period, Preview computes
// one employee's figures without side effects.
type Engine interface {
	Run(ctx context.Context, p period.Period) (int, error)
	Preview(ctx context.Context, employeeID string, p period.Period) (Preview, error)
}
