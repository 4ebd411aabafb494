package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"hrms/internal/platform/crypto"
)

// RenderPayslipPDF lays out a single-page A4 payslip. Identity numbers are
// masked on the printed copy.
func RenderPayslipPDF(d PayslipDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}
	line("Employee", d.EmployeeName)
	line("Employee No", d.EmployeeNo)
	line("NRIC", crypto.Mask(d.NRIC))
	line("Period", d.Period.Label())
	if d.BankName != "" {
		line("Bank", fmt.Sprintf("%s %s", d.BankName, crypto.Mask(d.AccountNumber)))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	money := func(label string, a Amount) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, a.StringFixed(2), "", 1, "R", false, 0, "")
	}
	money("Basic salary", d.BasicSalary)
	money("Allowance", d.Allowance)
	money("Overtime", d.Overtime)
	money("Bonus", d.Bonus)
	money("Unutilised leave pay", d.UnutilisedLeavePay)
	money("Unpaid leave deduction", d.UnpaidLeaveDeduction)
	money("Adjustment", d.Adjustment)
	money("Gross pay", d.Gross)
	money("Advance deduction", d.AdvanceDeduction)
	money("Employee deduction", d.EmployeeDeduction)
	money("SDL", d.SDL)
	money("Welfare", d.Welfare)

	pdf.SetFont("Helvetica", "B", 12)
	money("Net pay", d.NetPay)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}
