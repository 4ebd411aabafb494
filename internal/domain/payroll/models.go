package payroll

import (
	"time"

	"hrms/internal/domain/period"
)

type CompensationRecord struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	BasicSalary   Amount    `json:"basicSalary"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MonthlySalaryAdjustment is one salary_items row, unique per employee and period.
type MonthlySalaryAdjustment struct {
	EmployeeID           string        `json:"employeeId"`
	Period               period.Period `json:"period"`
	Allowance            Amount        `json:"allowance"`
	Overtime             Amount        `json:"overtime"`
	Bonus                Amount        `json:"bonus"`
	UnutilisedLeavePay   Amount        `json:"unutilisedLeavePay"`
	UnpaidLeaveDeduction Amount        `json:"unpaidLeaveDeduction"`
	AdvanceDeduction     Amount        `json:"advanceDeduction"`
	Adjustment           Amount        `json:"adjustment"`
}

// EditableRow is the salary input grid row. Leave pay owed and unpaid leave
// deduction are folded into the single signed LeaveAdjustment.
type EditableRow struct {
	EmployeeID       string        `json:"employeeId" validate:"required"`
	EmployeeName     string        `json:"employeeName,omitempty"`
	Period           period.Period `json:"period"`
	BasicSalary      Amount        `json:"basicSalary"`
	Allowance        Amount        `json:"allowance"`
	Overtime         Amount        `json:"overtime"`
	Bonus            Amount        `json:"bonus"`
	LeaveAdjustment  Amount        `json:"leaveAdjustment"`
	AdvanceDeduction Amount        `json:"advanceDeduction"`
	Adjustment       Amount        `json:"adjustment"`
	HasPayslip       bool          `json:"hasPayslip"`
}

type EmployeeRef struct {
	ID   string
	Name string
}

type Preview struct {
	EmployeeID        string        `json:"employeeId"`
	Period            period.Period `json:"period"`
	Gross             Amount        `json:"gross"`
	EmployeeDeduction Amount        `json:"employeeDeduction"`
	NetPay            Amount        `json:"netPay"`
}

type Payslip struct {
	ID                   string        `json:"id"`
	EmployeeID           string        `json:"employeeId"`
	EmployeeName         string        `json:"employeeName"`
	Period               period.Period `json:"period"`
	BasicSalary          Amount        `json:"basicSalary"`
	Allowance            Amount        `json:"allowance"`
	Overtime             Amount        `json:"overtime"`
	Bonus                Amount        `json:"bonus"`
	UnutilisedLeavePay   Amount        `json:"unutilisedLeavePay"`
	UnpaidLeaveDeduction Amount        `json:"unpaidLeaveDeduction"`
	AdvanceDeduction     Amount        `json:"advanceDeduction"`
	Adjustment           Amount        `json:"adjustment"`
	Gross                Amount        `json:"gross"`
	EmployeeDeduction    Amount        `json:"employeeDeduction"`
	SDL                  Amount        `json:"sdl"`
	Welfare              Amount        `json:"welfare"`
	NetPay               Amount        `json:"netPay"`
	CreatedAt            time.Time     `json:"createdAt"`
}

// PayslipDetail adds the personal and bank details printed on a payslip.
type PayslipDetail struct {
	Payslip
	EmployeeNo    string `json:"employeeNo"`
	NRIC          string `json:"nric"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

// SealedPayslip is PayslipDetail as stored, before identifiers are opened.
type SealedPayslip struct {
	Payslip
	EmployeeNo    string
	NRICSealed    []byte
	BankName      string
	AccountSealed []byte
}

type RunResult struct {
	Period   period.Period `json:"period"`
	Payslips int           `json:"payslips"`
}
